// Package match implements parent matching: parents publish a short profile
// and browse other profiles in their region. Like the forum, this is plain
// CRUD over the relational store.
package match

import "time"

// Profile is a parent-match profile.
type Profile struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"userId"`
	Region         string    `json:"region"`
	ChildAgeMonths int       `json:"childAgeMonths"`
	Bio            string    `json:"bio"`
	CreatedAt      time.Time `json:"createdAt"`
}

// CreateProfileRequest holds the data submitted when publishing a profile.
type CreateProfileRequest struct {
	Region         string `json:"region"`
	ChildAgeMonths int    `json:"childAgeMonths"`
	Bio            string `json:"bio"`
}
