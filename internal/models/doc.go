// Package models defines the core domain models for SettleUp.
//
// # Models
//
//   - User: registered account that can belong to groups
//   - Group: a set of members sharing expenses
//   - Member: a user's membership in a group, with a role
//   - Expense: an amount paid by one member on behalf of several
//   - ExpenseSplit: one participant's share of an expense
//
// Balances and suggested settlements are derived on demand by the
// calculator package and are never stored.
//
// # Design Principles
//
//  1. Money is always integer cents (money.Cents), never float64.
//  2. Relationships use ID strings instead of pointers.
//  3. An expense and its splits are written together; the splits of an
//     expense always sum to its amount.
package models
