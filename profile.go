package blogstat

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
)

// Person identifies someone whose LinkedIn profile should be found.
type Person struct {
	Name        string
	Designation string
	Location    string
}

// Query returns the escaped search string for the person.
func (p Person) Query() string {
	return url.QueryEscape(strings.Join([]string{p.Name, p.Designation, p.Location}, " "))
}

// BulkProfileRequest is a batch of people given as three aligned lists.
type BulkProfileRequest struct {
	Names       []string `json:"names"`
	Designation []string `json:"designation"`
	Location    []string `json:"location"`
}

// Validate returns an error if the lists are not the same length.
func (r *BulkProfileRequest) Validate() error {
	if len(r.Names) != len(r.Designation) || len(r.Names) != len(r.Location) {
		return Errorf(EINVALID, "names, designation and location must have equal lengths (got %d, %d, %d)",
			len(r.Names), len(r.Designation), len(r.Location))
	}
	return nil
}

// People zips the request lists into Person values.
func (r *BulkProfileRequest) People() []Person {
	people := make([]Person, len(r.Names))
	for i := range r.Names {
		people[i] = Person{
			Name:        r.Names[i],
			Designation: r.Designation[i],
			Location:    r.Location[i],
		}
	}
	return people
}

// ProfileSearcher finds a single LinkedIn profile URL.
type ProfileSearcher interface {
	// SearchProfileURL returns the profile URL for an escaped query string.
	SearchProfileURL(ctx context.Context, query string) (string, error)
}

// ProfileMatcher fetches profile data for a batch of LinkedIn URLs.
type ProfileMatcher interface {
	// MatchProfiles returns the upstream response for the URLs verbatim.
	// The slice may contain empty strings for people that were not found.
	MatchProfiles(ctx context.Context, urls []string) (json.RawMessage, error)
}

// ProfileResolver resolves people to LinkedIn profile data.
type ProfileResolver interface {
	// ResolveProfiles searches every person then matches the found URLs.
	// Returns EINVALID if the request lists are misaligned.
	ResolveProfiles(ctx context.Context, req *BulkProfileRequest) (json.RawMessage, error)
}
