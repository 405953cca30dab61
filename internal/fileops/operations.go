package fileops

import (
	"collector/internal/apperrors"
	"collector/internal/types"
)

// AuditSink receives a record of every operation attempt. Defined locally
// (rather than imported from internal/audit) so fileops has no dependency
// on the audit package's concrete logger; internal/audit.Logger satisfies
// this interface.
type AuditSink interface {
	LogOperation(operation, source, target string)
	LogError(operation string, err error, source, target string)
}

// Operations is the facade every worker calls to transfer one file. It
// pairs a Strategy with an optional AuditSink, mirroring the original's
// FileOperations class.
type Operations struct {
	strategy Strategy
	audit    AuditSink
}

// NewOperations builds an Operations facade for mode, with no audit sink
// attached.
func NewOperations(mode types.OperationMode) *Operations {
	return &Operations{strategy: StrategyFor(mode)}
}

// SetStrategy swaps the active strategy, matching the original's
// set_strategy.
func (o *Operations) SetStrategy(s Strategy) { o.strategy = s }

// SetAuditSink attaches or clears (via nil) the audit sink.
func (o *Operations) SetAuditSink(sink AuditSink) { o.audit = sink }

// Execute validates source and target, runs the active strategy, and
// reports the outcome to the audit sink if one is attached. Failures are
// wrapped as FileOperation errors, matching the original's
// FileOperationError translation.
func (o *Operations) Execute(source, target string) error {
	if err := validatePathSecurity(source); err != nil {
		return err
	}
	if err := validatePathSecurity(target); err != nil {
		return err
	}

	name := o.strategy.Name()
	if err := o.strategy.Execute(source, target); err != nil {
		if o.audit != nil {
			o.audit.LogError(name, err, source, target)
		}
		return apperrors.Wrap(apperrors.FileOperation, "execute operation", err)
	}

	if o.audit != nil {
		o.audit.LogOperation(name, source, target)
	}
	return nil
}
