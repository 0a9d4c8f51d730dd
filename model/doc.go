// Package model defines the domain entities shared by the dispatch core and
// the external card/transaction store: cards, transactions, expense policies
// and their lifecycle states.
package model
