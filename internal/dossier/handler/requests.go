package handler

import "dossier/internal/dossier"

// LookupRequest is the POST /dossier/lookup body.
type LookupRequest struct {
	Name  string `json:"name"`
	State string `json:"state"`
	City  string `json:"city"`
}

// Query maps the transport request onto the domain query. Validation happens
// in the domain, not here.
func (r LookupRequest) Query() dossier.Query {
	return dossier.Query{
		Name:  r.Name,
		State: r.State,
		City:  r.City,
	}
}
