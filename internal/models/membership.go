package models

import "time"

// MembershipType is a named tier with a fixed renewal duration in days.
// The table is static configuration, not persisted per member.
type MembershipType struct {
	ID           int
	Name         string
	DurationDays int
}

var MembershipTypes = []MembershipType{
	{ID: 1, Name: "BULANAN", DurationDays: 30},
}

// MembershipTypeByID looks up a type in the fixed table.
func MembershipTypeByID(id int) (MembershipType, bool) {
	for _, mt := range MembershipTypes {
		if mt.ID == id {
			return mt, true
		}
	}
	return MembershipType{}, false
}

// StatusTag classifies how urgently a membership needs renewal.
type StatusTag string

const (
	StatusRed    StatusTag = "Red"
	StatusYellow StatusTag = "Yellow"
	StatusGreen  StatusTag = "Green"
)

// MemberStatus is the derived view of one member. It is recomputed on every
// read and never stored. Expiration and DaysLeft are nil for members with no
// transactions.
type MemberStatus struct {
	Member          Member
	LastTransaction *Transaction
	Expiration      *time.Time
	DaysLeft        *int
	Tag             StatusTag
}

// DeriveStatuses computes a MemberStatus for every member from the full
// ledger, against an injected reference date. Output order follows the
// member slice. The latest transaction per member wins; on equal dates the
// one appended later in the ledger wins.
func DeriveStatuses(members []Member, ledger []Transaction, today time.Time) []MemberStatus {
	latest := make(map[int]*Transaction, len(members))
	for i := range ledger {
		tx := &ledger[i]
		prev, ok := latest[tx.MemberID]
		if !ok || !tx.TransactionDate.Before(prev.TransactionDate) {
			latest[tx.MemberID] = tx
		}
	}

	today = dateOnly(today)

	statuses := make([]MemberStatus, 0, len(members))
	for _, m := range members {
		status := MemberStatus{Member: m, Tag: StatusRed}

		if tx := latest[m.MemberID]; tx != nil {
			duration := 0
			if mt, ok := MembershipTypeByID(tx.MembershipTypeID); ok {
				duration = mt.DurationDays
			}
			expiration := dateOnly(tx.TransactionDate).AddDate(0, 0, duration)
			daysLeft := int(expiration.Sub(today).Hours() / 24)

			status.LastTransaction = tx
			status.Expiration = &expiration
			status.DaysLeft = &daysLeft
			status.Tag = tagForDaysLeft(daysLeft)
		}

		statuses = append(statuses, status)
	}
	return statuses
}

func tagForDaysLeft(daysLeft int) StatusTag {
	switch {
	case daysLeft < 0:
		return StatusRed
	case daysLeft <= 3:
		return StatusYellow
	default:
		return StatusGreen
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
