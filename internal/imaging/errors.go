// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package imaging

import "fmt"

// Stage names the pipeline step that failed.
type Stage string

const (
	StageFetch  Stage = "fetch"
	StageDecode Stage = "decode"
	StageEncode Stage = "encode"
	StageUpload Stage = "upload"
)

// Error is returned by Pipeline.Ingest.
type Error struct {
	Stage Stage
	Path  string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("ingest %s: %s: %v", e.Path, e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
