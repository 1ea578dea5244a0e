// Package models defines the core domain models for gpbank.
//
// # Accounts
//
// Accounts are identified by a free-text name string (trimmed, case-sensitive).
// An account exists implicitly once it has been referenced by a deposit or a
// withdrawal; there is no explicit create or delete.
//
// # Loans
//
// Loans record a debt between a borrower name and a lender name. Neither name
// has to reference an existing account, and loans never move account balances.
// A loan starts open and becomes resolved exactly once, when a repayment brings
// its balance to zero.
//
// # Persistence
//
// State is the complete snapshot document. Its JSON tags define the on-disk
// layout, so renaming a tag is a breaking change for existing snapshots.
package models
