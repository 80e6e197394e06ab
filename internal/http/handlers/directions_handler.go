package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-rental-core/internal/navigation"
)

// DestinationBody selects a destination: a catalog listing, an address or
// a coordinate. Exactly one must be given.
type DestinationBody struct {
	ListingID string   `json:"listing_id,omitempty" example:"p1"`
	Address   string   `json:"address,omitempty" example:"1 Infinite Loop, Cupertino"`
	Lat       *float64 `json:"lat,omitempty" example:"37.3318"`
	Lng       *float64 `json:"lng,omitempty" example:"-122.0312"`
	Label     string   `json:"label,omitempty" example:"Loft"`
}

// DirectionsRequest asks for the candidate chain of a destination.
// When Installed is present the chain is also resolved against those URL
// schemes and the URI to launch is returned.
type DirectionsRequest struct {
	Destination DestinationBody `json:"destination"`
	Preferred   string          `json:"preferred,omitempty" example:"auto" enums:"auto,google,apple"`
	Mode        string          `json:"mode,omitempty" example:"driving" enums:"driving,walking,transit,bicycling"`
	Platform    string          `json:"platform,omitempty" example:"ios" enums:"ios,android"`
	Installed   []string        `json:"installed,omitempty" example:"comgooglemaps,maps"`
}

// AttemptView is one step of a resolution.
type AttemptView struct {
	URI     string `json:"uri"`
	Outcome string `json:"outcome" example:"not_installed"`
}

// OpenView is the candidate the host should launch. When even the web
// fallback cannot be opened, URI is empty and Code and Error describe the
// failure.
type OpenView struct {
	URI      string        `json:"uri"`
	Provider string        `json:"provider" example:"google"`
	Fallback bool          `json:"fallback"`
	Attempts []AttemptView `json:"attempts"`
	Code     string        `json:"code,omitempty" example:"navigation_failed"`
	Error    string        `json:"error,omitempty"`
}

// DirectionsResponse is the ordered chain; the last entry is the web URL.
type DirectionsResponse struct {
	Candidates []navigation.Candidate `json:"candidates"`
	Open       *OpenView              `json:"open,omitempty"`
}

// Directions godoc
// @ID          directions
// @Summary     Plan directions to a listing, address or coordinate
// @Description Returns native app candidates in preference order, ending with an HTTPS web URL.
// @Tags        Directions
// @Accept      json
// @Produce     json
// @Param       body body     handlers.DirectionsRequest true "Destination and preferences"
// @Success     200  {object} handlers.DirectionsResponse
// @Failure     400  {object} handlers.ErrorResponse
// @Failure     404  {object} handlers.ErrorResponse "Listing not in catalog"
// @Router      /directions [post]
func (h *Handlers) Directions(c *gin.Context) {
	var req DirectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	dest, status, code, msg := h.destination(req.Destination)
	if status != 0 {
		fail(c, status, code, msg)
		return
	}

	opts := navigation.Options{
		Preferred: navigation.Provider(strings.TrimSpace(req.Preferred)),
		Mode:      navigation.Mode(req.Mode),
		Platform:  navigation.Platform(strings.TrimSpace(req.Platform)),
	}
	resolver := h.nav
	plan, err := resolver.Plan(dest, opts)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidDestination, err.Error())
		return
	}
	resp := DirectionsResponse{Candidates: plan}

	if req.Installed != nil {
		resolver.Launcher = h.launcherFor(req.Installed...)
		res, err := resolver.Open(c.Request.Context(), dest, opts)
		var terminal *navigation.TerminalError
		switch {
		case errors.As(err, &terminal):
			resp.Open = failedView(terminal)
		case err != nil:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
			return
		default:
			resp.Open = openView(res)
		}
	}
	ok(c, http.StatusOK, resp)
}

func (h *Handlers) destination(b DestinationBody) (navigation.Destination, int, string, string) {
	label := strings.TrimSpace(b.Label)
	address := strings.TrimSpace(b.Address)
	hasCoord := b.Lat != nil || b.Lng != nil

	set := 0
	for _, given := range []bool{b.ListingID != "", address != "", hasCoord} {
		if given {
			set++
		}
	}
	if set != 1 {
		return navigation.Destination{}, http.StatusBadRequest, ErrCodeInvalidDestination,
			"give exactly one of listing_id, address or lat/lng"
	}

	switch {
	case b.ListingID != "":
		if h.catalog == nil {
			return navigation.Destination{}, http.StatusNotFound, ErrCodeUnknownListing, "no catalog loaded"
		}
		l, found := h.catalog.Get(b.ListingID)
		if !found {
			return navigation.Destination{}, http.StatusNotFound, ErrCodeUnknownListing, "listing not in catalog"
		}
		if label == "" {
			label = l.Title
		}
		if l.Lat == 0 && l.Lng == 0 && l.Address != "" {
			return navigation.ByAddress(l.Address, label), 0, "", ""
		}
		return navigation.ByCoordinate(l.Lat, l.Lng, label), 0, "", ""
	case address != "":
		return navigation.ByAddress(address, label), 0, "", ""
	default:
		if b.Lat == nil || b.Lng == nil {
			return navigation.Destination{}, http.StatusBadRequest, ErrCodeInvalidDestination, "lat and lng are both required"
		}
		return navigation.ByCoordinate(*b.Lat, *b.Lng, label), 0, "", ""
	}
}

func openView(res navigation.Result) *OpenView {
	return &OpenView{
		URI:      res.Opened.URI,
		Provider: string(res.Opened.Provider),
		Fallback: res.UsedFallback(),
		Attempts: attemptViews(res.Attempts),
	}
}

func failedView(e *navigation.TerminalError) *OpenView {
	return &OpenView{
		Fallback: true,
		Attempts: attemptViews(e.Attempts),
		Code:     ErrCodeNavigationFailed,
		Error:    e.Error(),
	}
}

func attemptViews(attempts []navigation.Attempt) []AttemptView {
	out := make([]AttemptView, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, AttemptView{URI: a.Candidate.URI, Outcome: string(a.Outcome)})
	}
	return out
}
