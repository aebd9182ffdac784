package domain

import "time"

// CustomerType distinguishes billing treatment, nothing else.
type CustomerType string

const (
	CustomerTypeIndividual CustomerType = "individual"
	CustomerTypeBusiness   CustomerType = "business"
)

// Customer is a client record owned by exactly one account.
type Customer struct {
	ID             string
	AccountID      string
	CustomerNumber string // C-00001 style, assigned on create
	Name           string
	Email          string
	Avatar         *string
	Type           CustomerType
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
