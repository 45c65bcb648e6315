// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package errutil_test

import (
	"testing"

	"github.com/samber/oops"

	"github.com/holomush/visitant/pkg/errutil"
)

func TestAssertErrorCode_MatchingCode(t *testing.T) {
	err := oops.Code("MY_CODE").Errorf("test error")
	// Should not fail
	errutil.AssertErrorCode(t, err, "MY_CODE")
}

func TestAssertErrorContext_MatchingKeyValue(t *testing.T) {
	err := oops.With("user_id", "123").Errorf("test error")
	// Should not fail
	errutil.AssertErrorContext(t, err, "user_id", "123")
}

func TestAssertErrorCode_WrappedError(t *testing.T) {
	inner := oops.Code("BIND_FAILED").With("addr", "127.0.0.1:12000").Errorf("address in use")
	err := oops.With("phase", "startup").Wrap(inner)
	errutil.AssertErrorCode(t, err, "BIND_FAILED")
	errutil.AssertErrorContext(t, err, "addr", "127.0.0.1:12000")
}
