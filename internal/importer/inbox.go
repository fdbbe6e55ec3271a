package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/tesoro-dev/tesoro/internal/logger"
)

// processedDir is the subdirectory of an inbox that receives imported files.
const processedDir = "processed"

// FileInfo describes a statement file waiting in an inbox directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// Scan returns the CSV files directly inside dir. Hidden files, such as the
// lock files spreadsheet editors leave next to an open statement, are skipped.
func Scan(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading inbox dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from dir to dir/processed/ and returns its new
// path. An existing file is never replaced: the moved file gets a numeric
// suffix instead.
func MarkProcessed(dir, fileName string) (string, error) {
	src := filepath.Join(dir, fileName)
	dstDir := filepath.Join(dir, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return "", fmt.Errorf("creating processed dir: %w", err)
	}

	ext := filepath.Ext(fileName)
	base := strings.TrimSuffix(fileName, ext)
	dst := filepath.Join(dstDir, fileName)
	for n := 2; ; n++ {
		if _, err := os.Stat(dst); os.IsNotExist(err) {
			break
		} else if err != nil {
			return "", fmt.Errorf("stat %s: %w", dst, err)
		}
		dst = filepath.Join(dstDir, fmt.Sprintf("%s-%d%s", base, n, ext))
	}
	if err := os.Rename(src, dst); err != nil {
		return "", fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return dst, nil
}

// Source is an inbox directory whose files belong to one account.
type Source struct {
	Dir        string
	AccountID  uuid.UUID
	TemplateID *uuid.UUID // nil = the account's linked template
}

// FileResult is the outcome of importing one inbox file.
type FileResult struct {
	File   FileInfo
	Result *Result
	Err    error
}

// Inbox imports every file found in a set of sources.
type Inbox struct {
	svc     *Service
	owner   uuid.UUID
	sources []Source
}

// NewInbox creates an Inbox importing on behalf of owner.
func NewInbox(svc *Service, owner uuid.UUID, sources []Source) *Inbox {
	return &Inbox{svc: svc, owner: owner, sources: sources}
}

// Run imports every waiting file once. Imported files are moved to
// processed/; files that fail stay in place and are retried on the next run.
func (in *Inbox) Run(ctx context.Context) ([]FileResult, error) {
	log := logger.FromContext(ctx)

	var results []FileResult
	for _, src := range in.sources {
		files, err := Scan(src.Dir)
		if err != nil {
			return results, err
		}
		for _, f := range files {
			fr := FileResult{File: f}
			fr.Result, fr.Err = in.importFile(ctx, src, f)
			if fr.Err != nil {
				log.Error().Err(fr.Err).Str("file", f.Path).Msg("inbox import failed")
			} else if _, err := MarkProcessed(src.Dir, f.Name); err != nil {
				fr.Err = err
			}
			results = append(results, fr)
		}
	}
	return results, nil
}

func (in *Inbox) importFile(ctx context.Context, src Source, f FileInfo) (*Result, error) {
	content, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	return in.svc.Import(ctx, Request{
		Owner:      in.owner,
		AccountID:  src.AccountID,
		Filename:   f.Name,
		Content:    content,
		TemplateID: src.TemplateID,
	})
}
