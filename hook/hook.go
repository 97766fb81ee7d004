// Package hook installs and removes a set of function hooks as a single
// transaction: either every resolved hook goes live or none does.
package hook

import (
	"errors"
	"fmt"

	"eternalredirect/process"
	"eternalredirect/scanner"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

var (
	// ErrAlreadyAttached is returned by Attach on a live set
	ErrAlreadyAttached = errors.New("hooks already attached")

	// ErrNotAttached is returned by Detach when nothing is installed
	ErrNotAttached = errors.New("hooks not attached")

	// ErrNothingResolved is returned when no slot has a target address
	ErrNothingResolved = errors.New("no hook target resolved")

	// ErrPrologueTooShort is returned when a slot's prologue cannot hold a jump
	ErrPrologueTooShort = errors.New("prologue too short for jump")
)

// Patch is a hook prepared by an Installer but not necessarily applied
type Patch interface {
	// Target is the hooked function's address
	Target() uintptr

	// Trampoline calls the original function
	Trampoline() uintptr
}

// Installer performs the byte-level work for a Set
type Installer interface {
	// Prepare builds the trampoline for target without touching target itself
	Prepare(target, detour uintptr, prologue int) (Patch, error)

	// Commit applies all patches. If any write fails the ones already
	// written are restored before the error is returned.
	Commit(patches []Patch) error

	// Revert restores the original bytes of all patches. On failure the
	// patches already restored are applied again.
	Revert(patches []Patch) error

	// Release frees a patch's trampoline
	Release(patch Patch)
}

// Slot describes one hooked function
type Slot struct {
	Name      string
	Signature process.AOB

	// Prologue is the length of the whole instructions at the start of the
	// function that are moved into the trampoline.
	Prologue int

	// Detour is the replacement entry point
	Detour uintptr

	// Original receives the trampoline address while the hook is live and
	// is zero otherwise.
	Original *uintptr

	Target process.ProcessMemoryAddress

	patch Patch
}

// Resolved reports whether the slot has a target address
func (s *Slot) Resolved() bool {
	return s.Target.IsFound() && s.Target != 0
}

// Attached reports whether the slot's hook is live
func (s *Slot) Attached() bool {
	return s.patch != nil
}

func (s *Slot) setOriginal(addr uintptr) {
	if s.Original != nil {
		*s.Original = addr
	}
}

// Set is a group of slots installed together
type Set struct {
	installer Installer
	slots     []*Slot
	log       *logger.Logger
	attached  bool
}

// NewSet creates a set over slots. Every slot starts unresolved.
func NewSet(installer Installer, slots ...*Slot) *Set {
	for _, slot := range slots {
		slot.Target = process.NotFound
	}

	return &Set{
		installer: installer,
		slots:     slots,
		log:       logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "hook")),
	}
}

// Slots returns the slots in installation order
func (s *Set) Slots() []*Slot {
	return s.slots
}

// Slot returns the slot with the given name, or nil
func (s *Set) Slot(name string) *Slot {
	for _, slot := range s.slots {
		if slot.Name == name {
			return slot
		}
	}
	return nil
}

// IsAttached reports whether the named slot is live
func (s *Set) IsAttached(name string) bool {
	slot := s.Slot(name)
	return slot != nil && slot.Attached()
}

// Resolve looks up every slot's signature and returns how many were found.
// A missing signature leaves that slot unresolved; it is skipped on Attach.
func (s *Set) Resolve(sc *scanner.Scanner) int {
	resolved := 0
	for _, slot := range s.slots {
		addr, err := sc.Resolve(slot.Signature)
		if err != nil {
			slot.Target = process.NotFound
			s.log.Warn("Unable to find the ", slot.Name, " function: ", err)
			continue
		}

		slot.Target = addr
		resolved++
		s.log.Infoln("Resolved", slot.Name, "at", addr.ToString())
	}
	return resolved
}

// Attach installs every resolved slot in one transaction
func (s *Set) Attach() error {
	if s.attached {
		return ErrAlreadyAttached
	}

	var (
		ready   []*Slot
		patches []Patch
	)

	rollback := func() {
		for i, slot := range ready {
			slot.setOriginal(0)
			s.installer.Release(patches[i])
		}
	}

	for _, slot := range s.slots {
		if !slot.Resolved() {
			s.log.Warn("Skipping unresolved hook ", slot.Name)
			continue
		}

		patch, err := s.installer.Prepare(uintptr(slot.Target), slot.Detour, slot.Prologue)
		if err != nil {
			rollback()
			return fmt.Errorf("attach %s: %w", slot.Name, err)
		}

		ready = append(ready, slot)
		patches = append(patches, patch)
		slot.setOriginal(patch.Trampoline())
	}

	if len(patches) == 0 {
		return ErrNothingResolved
	}

	if err := s.installer.Commit(patches); err != nil {
		rollback()
		return fmt.Errorf("commit: %w", err)
	}

	for i, slot := range ready {
		slot.patch = patches[i]
		s.log.Infoln("Attached", slot.Name)
	}
	s.attached = true

	return nil
}

// Detach removes every live hook in one transaction
func (s *Set) Detach() error {
	if !s.attached {
		return ErrNotAttached
	}

	var (
		live    []*Slot
		patches []Patch
	)
	for _, slot := range s.slots {
		if slot.patch != nil {
			live = append(live, slot)
			patches = append(patches, slot.patch)
		}
	}

	if err := s.installer.Revert(patches); err != nil {
		return fmt.Errorf("detach: %w", err)
	}

	for _, slot := range live {
		slot.setOriginal(0)
		s.installer.Release(slot.patch)
		slot.patch = nil
		s.log.Infoln("Detached", slot.Name)
	}
	s.attached = false

	return nil
}
