package ingest

import (
	"context"
)

// Prompter is the interactive boundary of the ingestion pipeline: a
// capability the pipeline calls synchronously when a destination table name
// or camera id cannot be resolved any other way. Implementations may block
// on console input or answer from pre-supplied values; the contract is
// resolve-or-abort.
type Prompter interface {
	// TableName asks for the destination table name.
	TableName(ctx context.Context) (string, error)
	// CameraID asks for a camera id after folder-name inference failed
	// for the named folder.
	CameraID(ctx context.Context, folder string) (string, error)
}

// StaticPrompter answers prompts from fixed values, for batch and
// non-interactive runs.
type StaticPrompter struct {
	Prompter
	Table  string
	Camera string
}

func (p *StaticPrompter) TableName(ctx context.Context) (string, error) {
	return p.Table, nil
}

func (p *StaticPrompter) CameraID(ctx context.Context, folder string) (string, error) {
	return p.Camera, nil
}
