package otp

import (
	"errors"
	"fmt"
	"testing"
)

func TestEntryPasteRejectsNonDigits(t *testing.T) {
	entry := NewEntry(6, 30)
	next, changed := entry.Paste("12a456")
	if changed {
		t.Fatalf("expected paste with a letter to be rejected")
	}
	if next.Code() != "" || next.Status() != StatusEntering {
		t.Fatalf("expected untouched entry, got %#v", next.Snapshot())
	}
}

func TestEntryPasteFillsSlots(t *testing.T) {
	entry, changed := NewEntry(6, 30).Paste("123456")
	if !changed {
		t.Fatalf("expected paste to apply")
	}
	if entry.Status() != StatusComplete {
		t.Fatalf("expected complete, got %s", entry.Status())
	}
	if entry.Focus() != 5 {
		t.Fatalf("expected focus on last slot, got %d", entry.Focus())
	}
	if entry.Code() != "123456" {
		t.Fatalf("unexpected code %q", entry.Code())
	}
}

func TestEntryPastePartialAndOverlong(t *testing.T) {
	short, _ := NewEntry(6, 30).Paste("12")
	snap := short.Snapshot()
	if snap.Focus != 2 || snap.Status != StatusEntering {
		t.Fatalf("unexpected partial paste snapshot %#v", snap)
	}
	if snap.Digits[0] != "1" || snap.Digits[1] != "2" || snap.Digits[2] != "" {
		t.Fatalf("unexpected digits %#v", snap.Digits)
	}

	long, _ := NewEntry(6, 30).Paste("98765432")
	if long.Code() != "987654" || long.Focus() != 5 {
		t.Fatalf("expected truncation to six digits, got %q focus %d", long.Code(), long.Focus())
	}
}

func TestEntrySequentialTyping(t *testing.T) {
	entry := NewEntry(6, 30)
	for i := 0; i < 6; i++ {
		var changed bool
		entry, changed = entry.TypeDigit(i, fmt.Sprint(i+1))
		if !changed {
			t.Fatalf("expected digit %d to apply", i)
		}
		wantFocus := min(i+1, 5)
		if entry.Focus() != wantFocus {
			t.Fatalf("after slot %d expected focus %d, got %d", i, wantFocus, entry.Focus())
		}
		if i < 5 && entry.Status() != StatusEntering {
			t.Fatalf("expected entering after slot %d, got %s", i, entry.Status())
		}
	}
	if entry.Status() != StatusComplete || entry.Code() != "123456" {
		t.Fatalf("expected complete 123456, got %s %q", entry.Status(), entry.Code())
	}
}

func TestEntryTypeDigitRejectsInvalidInput(t *testing.T) {
	entry := NewEntry(6, 30)
	cases := []struct {
		index int
		char  string
	}{
		{0, "a"},
		{0, "12"},
		{0, ""},
		{-1, "1"},
		{6, "1"},
	}
	for _, tc := range cases {
		if _, changed := entry.TypeDigit(tc.index, tc.char); changed {
			t.Fatalf("expected TypeDigit(%d, %q) to be rejected", tc.index, tc.char)
		}
	}
}

func TestEntryBackspace(t *testing.T) {
	entry, _ := NewEntry(6, 30).Paste("123456")

	cleared, changed := entry.Backspace(3)
	if !changed {
		t.Fatalf("expected backspace on a filled slot to apply")
	}
	if cleared.Snapshot().Digits[3] != "" || cleared.Focus() != 3 {
		t.Fatalf("expected slot 3 cleared and focused, got %#v", cleared.Snapshot())
	}
	if cleared.Status() != StatusEntering {
		t.Fatalf("expected entering after clearing, got %s", cleared.Status())
	}
	if entry.Code() != "123456" {
		t.Fatalf("original entry must not change")
	}

	moved, changed := cleared.Backspace(3)
	if !changed {
		t.Fatalf("expected focus move on empty slot")
	}
	if moved.Focus() != 2 || moved.Code() != cleared.Code() {
		t.Fatalf("expected only focus to move, got %#v", moved.Snapshot())
	}

	if _, changed := NewEntry(6, 30).Backspace(0); changed {
		t.Fatalf("expected backspace on empty first slot to be a no-op")
	}
}

func TestEntrySubmitRequiresComplete(t *testing.T) {
	partial, _ := NewEntry(6, 30).Paste("123")
	if _, _, ok := partial.Submit(); ok {
		t.Fatalf("expected incomplete entry to refuse submit")
	}

	full, _ := NewEntry(6, 30).Paste("123456")
	submitting, code, ok := full.Submit()
	if !ok || code != "123456" || submitting.Status() != StatusSubmitting {
		t.Fatalf("unexpected submit result %v %q %s", ok, code, submitting.Status())
	}
	if _, changed := submitting.TypeDigit(0, "9"); changed {
		t.Fatalf("expected edits to be refused while submitting")
	}
	if _, _, ok := submitting.Submit(); ok {
		t.Fatalf("expected a second submit to be refused")
	}
}

func TestEntryResolveFailureKeepsDigits(t *testing.T) {
	full, _ := NewEntry(6, 30).Paste("123456")
	submitting, _, _ := full.Submit()

	failed, changed := submitting.Resolve(ErrInvalidCode)
	if !changed || failed.Status() != StatusError {
		t.Fatalf("expected error status, got %s", failed.Status())
	}
	snap := failed.Snapshot()
	if snap.Error != "Invalid verification code" || failed.Code() != "123456" {
		t.Fatalf("unexpected failure snapshot %#v", snap)
	}
	if _, _, ok := failed.Submit(); ok {
		t.Fatalf("expected error state to require an edit before resubmitting")
	}

	edited, _ := failed.TypeDigit(5, "7")
	if edited.Status() != StatusComplete || edited.Snapshot().Error != "" {
		t.Fatalf("expected edit to clear the error, got %#v", edited.Snapshot())
	}
}

func TestEntryResolveSuccessLocksEntry(t *testing.T) {
	full, _ := NewEntry(6, 0).Paste("123456")
	submitting, _, _ := full.Submit()
	verified, _ := submitting.Resolve(nil)
	if verified.Status() != StatusVerified {
		t.Fatalf("expected verified, got %s", verified.Status())
	}
	if _, changed := verified.Backspace(5); changed {
		t.Fatalf("expected verified entry to refuse edits")
	}
	if _, changed := verified.Resend(); changed {
		t.Fatalf("expected verified entry to refuse resend")
	}
	if verified.Snapshot().CanResend {
		t.Fatalf("verified entry must not offer resend")
	}
	if _, changed := full.Resolve(nil); changed {
		t.Fatalf("expected resolve outside submitting to be ignored")
	}
}

func TestEntryCooldown(t *testing.T) {
	entry := NewEntry(6, 30)
	if entry.Snapshot().CanResend {
		t.Fatalf("expected resend disabled at start")
	}
	if _, changed := entry.Resend(); changed {
		t.Fatalf("expected resend refused during cooldown")
	}
	for i := 0; i < 30; i++ {
		entry, _ = entry.Tick()
	}
	if entry.Cooldown().Remaining != 0 || !entry.Snapshot().CanResend {
		t.Fatalf("expected cooldown elapsed, got %#v", entry.Cooldown())
	}
	if _, changed := entry.Tick(); changed {
		t.Fatalf("expected tick at zero to be a no-op")
	}

	typed, _ := entry.TypeDigit(0, "4")
	resent, changed := typed.Resend()
	if !changed || resent.Cooldown().Remaining != 30 {
		t.Fatalf("expected cooldown restarted to 30, got %#v", resent.Cooldown())
	}
	if resent.Code() != "4" || resent.Status() != StatusEntering {
		t.Fatalf("resend must keep digits and status")
	}
}

func TestFailureMessage(t *testing.T) {
	cases := map[error]string{
		nil:                                    "",
		ErrInvalidCode:                         "Invalid verification code",
		fmt.Errorf("wrap: %w", ErrInvalidCode): "Invalid verification code",
		ErrIncompleteCode:                      "Please enter the complete verification code",
		ErrVerifyTimeout:                       "Verification timed out. Please try again.",
		errors.New("boom"):                     "An error occurred. Please try again.",
	}
	for err, want := range cases {
		if got := FailureMessage(err); got != want {
			t.Fatalf("FailureMessage(%v) = %q, want %q", err, got, want)
		}
	}
}
