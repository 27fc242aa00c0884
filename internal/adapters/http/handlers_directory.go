package web

import (
	"net/http"
	"strconv"
	"strings"

	"itgportal/internal/application/listutil"
	"itgportal/internal/application/orchestrators"
	"itgportal/internal/application/projections"
	"itgportal/internal/domain/client"
	"itgportal/internal/domain/coach"
)

type coachView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Active bool   `json:"active"`
}

func toCoachView(c coach.Coach) coachView {
	return coachView{ID: c.ID, Name: c.Name, Email: c.Email, Active: c.Active}
}

type clientView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Program string `json:"program"`
	CoachID string `json:"coachId,omitempty"`
	Status  string `json:"status"`
}

func toClientView(c client.Client) clientView {
	return clientView{ID: c.ID, Name: c.Name, Email: c.Email, Program: c.Program, CoachID: c.CoachID, Status: c.Status}
}

type createCoachRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email"`
}

type createClientRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"omitempty,email"`
	Program string `json:"program" validate:"required,oneof=business job_placement bridges grace"`
	CoachID string `json:"coachId"`
}

// writePageHeaders reports paging metadata so list bodies stay plain arrays.
func writePageHeaders(w http.ResponseWriter, info listutil.PageInfo) {
	w.Header().Set("X-Total-Count", strconv.Itoa(info.Total))
	w.Header().Set("X-Page", strconv.Itoa(info.Page))
	w.Header().Set("X-Per-Page", strconv.Itoa(info.PerPage))
	w.Header().Set("X-Total-Pages", strconv.Itoa(info.TotalPages))
}

func compareName(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

// handleListCoaches serves GET /api/coaches?active=true&q=&sort=name&dir=&page=&per_page=.
func handleListCoaches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := projections.QueryListCoaches(r.Context(), projections.ListCoachesQuery{
		ActiveOnly: q.Get("active") == "true",
	}, stores.CoachStore)
	if err != nil {
		internalError(w, err)
		return
	}
	params := listutil.ParseParams(q, []string{"name", "email"})
	page, info := listutil.Paginate(list, params,
		func(c coach.Coach) bool { return params.Matches(c.Name, c.Email) },
		func(a, b coach.Coach) int {
			if params.Sort == "email" {
				return compareName(a.Email, b.Email)
			}
			return compareName(a.Name, b.Name)
		})
	views := make([]coachView, len(page))
	for i, c := range page {
		views[i] = toCoachView(c)
	}
	writePageHeaders(w, info)
	writeJSON(w, http.StatusOK, views)
}

// handleCreateCoach serves POST /api/coaches.
func handleCreateCoach(w http.ResponseWriter, r *http.Request) {
	var req createCoachRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	c, err := orchestrators.ExecuteCreateCoach(r.Context(), orchestrators.CreateCoachInput{
		Name:  req.Name,
		Email: req.Email,
	}, orchestrators.CreateCoachDeps{CoachStore: stores.CoachStore, GenerateID: generateID})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCoachView(c))
}

// handleListClients serves GET /api/clients?program=&coachId=&status=&q=&sort=&dir=&page=&per_page=.
func handleListClients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := projections.QueryListClients(r.Context(), projections.ListClientsQuery{
		Program: q.Get("program"),
		CoachID: q.Get("coachId"),
		Status:  q.Get("status"),
	}, stores.ClientStore)
	if err != nil {
		internalError(w, err)
		return
	}
	params := listutil.ParseParams(q, []string{"name", "program"})
	page, info := listutil.Paginate(list, params,
		func(c client.Client) bool { return params.Matches(c.Name, c.Email) },
		func(a, b client.Client) int {
			if params.Sort == "program" {
				if c := strings.Compare(a.Program, b.Program); c != 0 {
					return c
				}
			}
			return compareName(a.Name, b.Name)
		})
	views := make([]clientView, len(page))
	for i, c := range page {
		views[i] = toClientView(c)
	}
	writePageHeaders(w, info)
	writeJSON(w, http.StatusOK, views)
}

// handleCreateClient serves POST /api/clients.
func handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	c, err := orchestrators.ExecuteCreateClient(r.Context(), orchestrators.CreateClientInput{
		Name:    req.Name,
		Email:   req.Email,
		Program: req.Program,
		CoachID: req.CoachID,
	}, orchestrators.CreateClientDeps{
		ClientStore: stores.ClientStore,
		CoachStore:  stores.CoachStore,
		GenerateID:  generateID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toClientView(c))
}
