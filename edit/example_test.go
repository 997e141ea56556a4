// SPDX-License-Identifier: EPL-2.0

package edit_test

import (
	"context"
	"fmt"

	"github.com/ik5/audedit/audio"
	"github.com/ik5/audedit/edit"
)

func Example_trim() {
	// Four seconds of silence at 8 kHz
	buf := audio.NewBuffer(8000, 1, make([]float32, 4*8000))

	engine := edit.NewEngine(nil)
	out, err := engine.Apply(context.Background(), buf, edit.Trim, edit.Params{
		"start_ms": 1000,
		"end_ms":   3000,
	})
	if err != nil {
		fmt.Printf("Edit error: %v\n", err)
		return
	}

	fmt.Printf("Duration: %.1fs\n", out.Seconds())
	// Output:
	// Duration: 2.0s
}

func Example_parseRequest() {
	kind, err := edit.ParseKind("volume")
	if err != nil {
		fmt.Println(err)
		return
	}

	params, err := edit.ParseParams([]byte(`"{\"volume_change_db\": -6}"`))
	if err != nil {
		fmt.Println(err)
		return
	}

	db, _ := params.Float(edit.ParamVolumeDB, 0)
	fmt.Printf("%s by %v dB\n", kind, db)

	_, err = edit.ParseKind("normalize")
	fmt.Println(err)
	// Output:
	// volume by -6 dB
	// invalid edit parameters: unsupported edit kind: "normalize"
}
