/*
   Copyright 2018-2019 Banco Bilbao Vizcaya Argentaria, S.A.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package hashlife

import (
	"fmt"

	"github.com/pkg/errors"
)

// ValidationError reports malformed input: bad cell shapes, non finite or
// non integral coordinates, negative generation counts. Never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ResourceExhaustion reports a pattern that outgrew the configured
// ceilings (tree level or node count).
type ResourceExhaustion struct {
	Resource string
	Limit    int64
	Value    int64
}

func (e *ResourceExhaustion) Error() string {
	return fmt.Sprintf("resource exhausted: %s %d exceeds limit %d", e.Resource, e.Value, e.Limit)
}

// InternalInvariantViolation is raised, by panicking, when the canonical
// form or the memoized results are found inconsistent. It is never
// recovered by the engine.
type InternalInvariantViolation struct {
	Reason string
}

func (e *InternalInvariantViolation) Error() string {
	return "hashlife invariant violated: " + e.Reason
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func violation(format string, args ...interface{}) {
	panic(&InternalInvariantViolation{Reason: fmt.Sprintf(format, args...)})
}

// IsValidation tells if the cause of err is a ValidationError.
func IsValidation(err error) bool {
	_, ok := errors.Cause(err).(*ValidationError)
	return ok
}

// IsResourceExhaustion tells if the cause of err is a ResourceExhaustion.
func IsResourceExhaustion(err error) bool {
	_, ok := errors.Cause(err).(*ResourceExhaustion)
	return ok
}
