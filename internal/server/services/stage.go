// Package services contains the server-side business logic: the staged
// provisioning pipeline behind registration, login, profile updates, and
// avatar uploads.
package services

import "fmt"

// Pipeline stage names, attached to fatal failures and warnings so callers
// and logs can tell which step degraded or aborted an operation.
const (
	StageValidate       = "validate"
	StageGetSecrets     = "getSecrets"
	StageHash           = "hash"
	StageStorePut       = "storePut"
	StageStoreGet       = "storeGet"
	StageStoreUpdate    = "storeUpdate"
	StageFindByEmail    = "findByEmail"
	StageVerifyPassword = "verifyPassword"
	StageIssueToken     = "issueToken"
	StageBlobPut        = "blobPut"
	StageCardRequest    = "cardRequest"
	StageNotify         = "notify"
)

// StageError is a fatal pipeline failure attributed to the stage it occurred
// in. It unwraps to the taxonomy sentinel carried by Err, so errors.Is keeps
// working through it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func failed(stage string, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}
