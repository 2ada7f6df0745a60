// Package onboarding walks a new user through phone entry, the 4-digit code
// and role selection. Verification is local: any complete code is accepted.
package onboarding

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Step is the screen the flow is on.
type Step string

const (
	StepPhone Step = "phone"
	StepCode  Step = "code"
	StepRole  Step = "role"
	StepDone  Step = "done"
)

// Role is who the user is in the care circle.
type Role string

const (
	RoleElder     Role = "elder"
	RoleCaregiver Role = "caregiver"
	RoleFamily    Role = "family"
)

// Roles in display order.
var Roles = []Role{RoleElder, RoleCaregiver, RoleFamily}

const (
	// DefaultCallingCode is Sri Lanka.
	DefaultCallingCode = "94"
	minPhoneDigits     = 9
	codeLength         = 4
)

var (
	ErrInvalidPhone   = errors.New("please enter a valid phone number")
	ErrIncompleteCode = errors.New("please enter all 4 digits")
	ErrUnknownRole    = errors.New("unknown role")
	ErrNoRole         = errors.New("no role selected")
	ErrOutOfOrder     = errors.New("step not available")
)

// State is a read-only view of a flow.
type State struct {
	ID          string `json:"id"`
	Step        Step   `json:"step"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Role        Role   `json:"role,omitempty"`
}

// Flow is one onboarding run.
type Flow struct {
	mu    sync.Mutex
	id    string
	step  Step
	phone string
	code  [codeLength]string
	role  Role
}

func NewFlow(id string) *Flow {
	return &Flow{id: id, step: StepPhone}
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return State{ID: f.id, Step: f.step, PhoneNumber: f.phone, Role: f.role}
}

// FullNumber joins a calling code and a local number as "+<code><number>".
// Spaces and dashes are dropped; the number must then be at least 9 digits.
func FullNumber(callingCode, number string) (string, error) {
	callingCode = strings.TrimPrefix(strings.TrimSpace(callingCode), "+")
	if callingCode == "" {
		callingCode = DefaultCallingCode
	}
	number = strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(number))
	if len(number) < minPhoneDigits || !allDigits(number) || !allDigits(callingCode) {
		return "", ErrInvalidPhone
	}
	return "+" + callingCode + number, nil
}

// SubmitPhone records the number and moves on to code entry. It may be
// called again from the code step to correct the number.
func (f *Flow) SubmitPhone(callingCode, number string) (State, error) {
	full, err := FullNumber(callingCode, number)
	if err != nil {
		return f.State(), err
	}

	f.mu.Lock()
	if f.step != StepPhone && f.step != StepCode {
		f.mu.Unlock()
		return f.State(), fmt.Errorf("%w: phone on %s", ErrOutOfOrder, f.step)
	}
	f.phone = full
	f.code = [codeLength]string{}
	f.step = StepCode
	f.mu.Unlock()
	return f.State(), nil
}

// EnterDigit sets one box of the code. An empty digit clears the box.
func (f *Flow) EnterDigit(index int, digit string) error {
	if index < 0 || index >= codeLength {
		return fmt.Errorf("code index %d out of range", index)
	}
	if digit != "" && (len(digit) != 1 || !allDigits(digit)) {
		return fmt.Errorf("code box takes one digit, got %q", digit)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepCode {
		return fmt.Errorf("%w: code on %s", ErrOutOfOrder, f.step)
	}
	f.code[index] = digit
	return nil
}

// EnterCode fills the boxes from a string, one digit per box.
func (f *Flow) EnterCode(code string) error {
	if len(code) > codeLength {
		return ErrIncompleteCode
	}
	for i := 0; i < codeLength; i++ {
		d := ""
		if i < len(code) {
			d = code[i : i+1]
		}
		if err := f.EnterDigit(i, d); err != nil {
			return err
		}
	}
	return nil
}

// Verify accepts the code when all boxes are filled.
func (f *Flow) Verify() (State, error) {
	f.mu.Lock()
	if f.step != StepCode {
		f.mu.Unlock()
		return f.State(), fmt.Errorf("%w: verify on %s", ErrOutOfOrder, f.step)
	}
	if len(strings.Join(f.code[:], "")) != codeLength {
		f.mu.Unlock()
		return f.State(), ErrIncompleteCode
	}
	f.step = StepRole
	f.mu.Unlock()
	return f.State(), nil
}

// SelectRole toggles a role: choosing the selected role again clears it.
func (f *Flow) SelectRole(r Role) (State, error) {
	if !validRole(r) {
		return f.State(), fmt.Errorf("%w: %q", ErrUnknownRole, r)
	}

	f.mu.Lock()
	if f.step != StepRole {
		f.mu.Unlock()
		return f.State(), fmt.Errorf("%w: role on %s", ErrOutOfOrder, f.step)
	}
	if f.role == r {
		f.role = ""
	} else {
		f.role = r
	}
	f.mu.Unlock()
	return f.State(), nil
}

// Confirm finishes the flow with the selected role.
func (f *Flow) Confirm() (State, error) {
	f.mu.Lock()
	if f.step != StepRole {
		f.mu.Unlock()
		return f.State(), fmt.Errorf("%w: confirm on %s", ErrOutOfOrder, f.step)
	}
	if f.role == "" {
		f.mu.Unlock()
		return f.State(), ErrNoRole
	}
	f.step = StepDone
	f.mu.Unlock()
	return f.State(), nil
}

func validRole(r Role) bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
