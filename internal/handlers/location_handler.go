package handlers

import (
	"net/http"
	"strings"

	"carewise/internal/models"
	"carewise/internal/validation"
)

// Regions offered on the location page.
var Regions = []string{"general", "temperate", "tropical", "arid"}

// LocationViewData backs the location page.
type LocationViewData struct {
	Location  string
	Region    string
	Regions   []string
	Resources []models.HealthResource
	Remedies  []models.Remedy
}

func validRegion(region string) bool {
	for _, r := range Regions {
		if r == region {
			return true
		}
	}
	return false
}

// ShowLocation lists resources and remedies for the visitor's region.
func (s *Server) ShowLocation(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())

	v.mu.Lock()
	data := LocationViewData{Location: v.location, Region: v.region, Regions: Regions}
	v.mu.Unlock()

	if data.Region == "" {
		data.Region = "general"
	}
	if data.Location != "" {
		data.Resources = s.library.ResourcesFor(data.Region)
		data.Remedies = s.library.RemediesFor(data.Region)
	}
	s.renderPage(w, r, "location", "Near Me", "location", data)
}

// SetLocation stores the manually entered location.
func (s *Server) SetLocation(w http.ResponseWriter, r *http.Request) {
	v := VisitorFromContext(r.Context())

	location := strings.TrimSpace(r.FormValue("location"))
	region := strings.TrimSpace(r.FormValue("region"))
	if region == "" {
		region = "general"
	}
	if err := validation.ValidateRequired("location", location, validation.MaxShortLength); err != nil || !validRegion(region) {
		msg := "Please choose a region from the list."
		if err != nil {
			msg = validationMessage(err)
		}
		s.render(w, r, http.StatusBadRequest, "location", "Near Me", "location", LocationViewData{
			Location: location,
			Region:   "general",
			Regions:  Regions,
		}, msg)
		return
	}

	v.mu.Lock()
	v.location = location
	v.region = region
	v.mu.Unlock()

	v.Announcer.Announce("Showing health resources near " + location)
	redirect(w, r, "/location")
}
