// SPDX-License-Identifier: EPL-2.0

// Package library manages uploaded audio assets: their files in the media
// directory, their records in the store and the edits applied to them.
package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/google/uuid"
	"github.com/ik5/audedit"
	"github.com/ik5/audedit/edit"
	"github.com/ik5/audedit/internal/logging"
	"github.com/ik5/audedit/internal/store"
	"github.com/sirupsen/logrus"
)

var (
	ErrNotFound          = store.ErrNotFound
	ErrForbidden         = errors.New("only the owner may change this asset")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrFileMissing       = errors.New("audio file missing")
)

// UploadFormats are the extensions accepted by Upload.
var UploadFormats = []string{"mp3", "wav", "ogg", "m4a", "aiff"}

type Library struct {
	store *store.Store
	proc  *audedit.Processor
	dir   string
	log   *logrus.Entry
	locks assetLocks
}

// New creates the media directory if needed.
func New(st *store.Store, proc *audedit.Processor, mediaDir string, log *logrus.Entry) (*Library, error) {
	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating media directory: %w", err)
	}

	return &Library{
		store: st,
		proc:  proc,
		dir:   mediaDir,
		log:   logging.OrDiscard(log),
		locks: assetLocks{m: make(map[string]*assetLock)},
	}, nil
}

func (l *Library) path(file string) string {
	return filepath.Join(l.dir, file)
}

// Upload describes a new file.
type Upload struct {
	Title    string
	User     string
	Filename string
	Body     io.Reader
}

// Upload stores the file, records it and extracts its waveform. When the
// waveform cannot be extracted the asset and its file are removed again.
func (l *Library) Upload(ctx context.Context, u Upload) (*store.Asset, error) {
	format := audedit.FormatOf(u.Filename)
	if !slices.Contains(UploadFormats, format) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(u.Filename))
	}

	title := u.Title
	if title == "" {
		title = filepath.Base(u.Filename)
	}

	a := &store.Asset{
		ID:       uuid.NewString(),
		Title:    title,
		File:     uuid.NewString() + "." + format,
		FileType: format,
		User:     u.User,
	}
	log := l.log.WithFields(logrus.Fields{"asset": a.ID, "user": a.User, "file": a.File})

	if err := l.writeFile(a.File, u.Body); err != nil {
		return nil, err
	}

	if err := l.store.CreateAsset(ctx, a); err != nil {
		os.Remove(l.path(a.File))
		return nil, err
	}

	log.WithField("name", u.Filename).Info("asset created")

	res, err := l.proc.WaveformContext(ctx, l.path(a.File))
	if err == nil {
		err = l.store.UpdateMetadata(ctx, a.ID, res.Duration, res.Waveform)
	}
	if err != nil {
		log.WithError(err).Error("waveform extraction failed, removing asset")
		l.discard(a)
		return nil, err
	}

	a.Duration = &res.Duration
	a.Waveform = res.Waveform

	log.WithField("duration", res.Duration).Info("asset ready")

	return a, nil
}

func (l *Library) writeFile(name string, body io.Reader) (err error) {
	f, err := os.OpenFile(l.path(name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("storing upload: %w", err)
	}

	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("storing upload: %w", cerr)
		}
		if err != nil {
			os.Remove(f.Name())
		}
	}()

	if _, err := io.Copy(f, body); err != nil {
		return fmt.Errorf("storing upload: %w", err)
	}

	return nil
}

// discard removes a half-created asset, ignoring request cancellation.
func (l *Library) discard(a *store.Asset) {
	if err := l.store.DeleteAsset(context.Background(), a.ID); err != nil {
		l.log.WithError(err).WithField("asset", a.ID).Warn("removing asset record")
	}
	if err := os.Remove(l.path(a.File)); err != nil && !errors.Is(err, os.ErrNotExist) {
		l.log.WithError(err).WithField("asset", a.ID).Warn("removing asset file")
	}
}

// Get returns the asset with its edit history.
func (l *Library) Get(ctx context.Context, id string) (*store.Asset, error) {
	a, err := l.store.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}

	if a.Edits, err = l.store.ListEdits(ctx, id); err != nil {
		return nil, err
	}

	return a, nil
}

// List returns all assets, newest first, without their edits.
func (l *Library) List(ctx context.Context) ([]store.Asset, error) {
	return l.store.ListAssets(ctx)
}

// Edits returns the history of an asset, oldest first.
func (l *Library) Edits(ctx context.Context, id string) ([]store.Edit, error) {
	if _, err := l.store.GetAsset(ctx, id); err != nil {
		return nil, err
	}

	return l.store.ListEdits(ctx, id)
}

// Edit applies kind to the asset's audio. Only the owner may edit. On
// success the asset points at the new file, carries its waveform and
// duration, the edit is appended to its history and the previous file is
// removed. On failure the asset is unchanged.
func (l *Library) Edit(ctx context.Context, id, user, kind string, params edit.Params) (*store.Asset, error) {
	k, err := edit.ParseKind(kind)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", edit.ErrInvalidParameters, err)
	}
	if params == nil {
		raw = []byte("{}")
	}

	unlock := l.locks.lock(id)
	defer unlock()

	a, err := l.store.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.User != user {
		return nil, ErrForbidden
	}

	log := l.log.WithFields(logrus.Fields{"asset": id, "user": user, "edit": k})

	original := l.path(a.File)
	out, err := l.proc.EditFile(ctx, original, k, params)
	if err != nil {
		log.WithError(err).Warn("edit failed")
		return nil, err
	}

	res, err := l.proc.WaveformContext(ctx, out)
	if err != nil {
		os.Remove(out)
		log.WithError(err).Warn("waveform of edited audio failed")
		return nil, fmt.Errorf("%w: %w", edit.ErrProcessingFailed, err)
	}

	_, err = l.store.ReplaceAudio(ctx, id, filepath.Base(out), res.Duration, res.Waveform, store.Edit{
		Kind:       k.String(),
		Parameters: raw,
		User:       user,
	})
	if err != nil {
		os.Remove(out)
		return nil, err
	}

	if original != out {
		if err := os.Remove(original); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).Warn("removing previous audio file")
		}
	}

	log.WithField("duration", res.Duration).Info("edit applied")

	// The edit is committed; report it even if the caller has gone away.
	return l.Get(context.WithoutCancel(ctx), id)
}

// Delete removes the asset, its history and its file. Only the owner may
// delete.
func (l *Library) Delete(ctx context.Context, id, user string) error {
	unlock := l.locks.lock(id)
	defer unlock()

	a, err := l.store.GetAsset(ctx, id)
	if err != nil {
		return err
	}
	if a.User != user {
		return ErrForbidden
	}

	if err := l.store.DeleteAsset(ctx, id); err != nil {
		return err
	}

	if err := os.Remove(l.path(a.File)); err != nil && !errors.Is(err, os.ErrNotExist) {
		l.log.WithError(err).WithField("asset", id).Warn("removing asset file")
	}

	l.log.WithFields(logrus.Fields{"asset": id, "user": user}).Info("asset deleted")

	return nil
}

// Download is an open asset file. The caller closes File.
type Download struct {
	Name string
	File *os.File
}

// Open opens the stored file of an asset for download, named
// <title>.<file type>.
func (l *Library) Open(ctx context.Context, id string) (*Download, error) {
	a, err := l.store.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(l.path(a.File))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFileMissing, a.File)
	}
	if err != nil {
		return nil, fmt.Errorf("opening audio: %w", err)
	}

	return &Download{Name: a.Title + "." + a.FileType, File: f}, nil
}
