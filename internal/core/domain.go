package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	KindCustomer EntityKind = "customer"
	KindWorker   EntityKind = "worker"
	KindImporter EntityKind = "importer"
)

type (
	EntityKind string

	// EntityRef points an assignment at its owner: the project itself when the
	// amount is billed to the customer, or a worker/importer row otherwise.
	// The referenced row carries no foreign key, so existence is checked by the
	// ledger before any insert.
	EntityRef struct {
		Kind EntityKind
		ID   int64
	}

	Project struct {
		ID   int64
		Name string
		// Cached rollup, rewritten after every mutation touching the
		// project's subtree.
		TotalAssigned float64
		TotalPaid     float64
	}

	Worker struct {
		ID        int64
		ProjectID int64
		Name      string
		Job       string
	}

	Importer struct {
		ID        int64
		ProjectID int64
		Name      string
	}

	Assignment struct {
		ID     int64
		Entity EntityRef
		// Amount is the contracted value for this unit of work and never
		// changes after insert.
		Amount      float64
		Date        Date
		Description string
		Good        string // importer assignments only
	}

	Payment struct {
		ID           int64
		AssignmentID int64
		Amount       float64
		Date         Date
	}
)

var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyName     = errors.New("empty name")
	ErrInvalidEntity = errors.New("invalid entity reference")
)

// OverpaymentError rejects a payment that would push the paid sum past the
// assignment's contracted amount.
type OverpaymentError struct {
	AssignmentID int64
	Amount       float64
	Remaining    float64
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment %s exceeds remaining %s on assignment %d",
		FormatAmount(e.Amount), FormatAmount(e.Remaining), e.AssignmentID)
}

func (k EntityKind) Valid() bool {
	switch k {
	case KindCustomer, KindWorker, KindImporter:
		return true
	}
	return false
}

func (r EntityRef) Validate() error {
	if !r.Kind.Valid() || r.ID <= 0 {
		return ErrInvalidEntity
	}
	return nil
}

func (a Assignment) Validate() error {
	if err := a.Entity.Validate(); err != nil {
		return err
	}
	if a.Amount <= 0 {
		return ErrInvalidAmount
	}
	if a.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(a.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if a.Good != "" && a.Entity.Kind != KindImporter {
		return errors.New("good label is only valid on importer assignments")
	}
	return nil
}

func (p Payment) Validate() error {
	if p.AssignmentID <= 0 {
		return ErrInvalidEntity
	}
	if p.Amount <= 0 {
		return ErrInvalidAmount
	}
	if p.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// ValidateName rejects blank project/worker/importer names.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	return nil
}
