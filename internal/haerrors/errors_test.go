// SPDX-License-Identifier: Apache-2.0

package haerrors

import (
	"errors"
	"fmt"
	"testing"

	. "github.com/onsi/gomega"
)

func TestWrapReturnsNilForNilError(t *testing.T) {
	g := NewWithT(t)
	g.Expect(Wrap(nil, FatalConfig, "unreachable")).To(BeNil())
}

func TestWrapProducesDescriptiveMessage(t *testing.T) {
	g := NewWithT(t)
	cause := errors.New("boom")
	err := Wrap(cause, TransientChild, "mount failed")
	g.Expect(err.Error()).To(ContainSubstring("mount failed"))
	g.Expect(err.Error()).To(ContainSubstring("boom"))
	g.Expect(errors.Unwrap(err)).To(Equal(cause))
}

func TestIsCodeMatchesDirectError(t *testing.T) {
	g := NewWithT(t)
	err := Wrap(errors.New("x"), FatalConfig, "bad config")
	g.Expect(IsCode(err, FatalConfig)).To(BeTrue())
	g.Expect(IsCode(err, Cancelled)).To(BeFalse())
}

func TestIsCodeMatchesThroughFmtWrap(t *testing.T) {
	g := NewWithT(t)
	err := Wrap(errors.New("x"), FatalConfig, "bad config")
	wrapped := fmt.Errorf("failed to load topology: %w", err)
	g.Expect(IsCode(wrapped, FatalConfig)).To(BeTrue())
}

func TestIsCodeFalseForPlainError(t *testing.T) {
	g := NewWithT(t)
	g.Expect(IsCode(errors.New("plain"), FatalConfig)).To(BeFalse())
}
