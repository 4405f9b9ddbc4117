package services

import "fmt"

// PipelineError carries a machine error code through the upload/save/
// aggregation pipeline so handlers can map it to an HTTP status.
type PipelineError struct {
	Code    string
	Message string
	Err     error
	// Detail holds structured context for the client, e.g. the list of
	// aircraft types that failed resolution.
	Detail any
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}
