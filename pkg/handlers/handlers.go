package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/konsumhq/konsum/pkg/auth"
	"github.com/konsumhq/konsum/pkg/config"
	"github.com/konsumhq/konsum/pkg/entitlement"
	"github.com/konsumhq/konsum/pkg/policy"
	"github.com/konsumhq/konsum/pkg/store"
	"github.com/konsumhq/konsum/pkg/tasks"
)

// Lifecycle is the controller behind the admin stop/reload routes. Stop must
// be idempotent; Reload only notifies the supervisor for now.
type Lifecycle interface {
	Stop()
	Reload()
}

type Handler struct {
	Config        *config.Config
	Store         store.Store
	Authenticator auth.Authenticator
	Tasks         *tasks.Registry
	Lifecycle     Lifecycle
	StartedAt     time.Time
}

func NewHandler(cfg *config.Config, s store.Store, authenticator auth.Authenticator, lifecycle Lifecycle) *Handler {
	return &Handler{
		Config:        cfg,
		Store:         s,
		Authenticator: authenticator,
		Tasks:         tasks.NewRegistry(),
		Lifecycle:     lifecycle,
		StartedAt:     time.Now(),
	}
}

// Route is one entry of the static dispatch table. Restricted routes pass
// the authentication gate first; routes carrying a body then get it
// validated, and routes declaring an entitlement are checked against the
// request identity before the handler body runs.
type Route struct {
	Name         string
	Method       string
	Path         string
	Restricted   bool
	BodyRequired bool
	Entitlement  string
	Handler      http.HandlerFunc
}

func (h *Handler) Routes() []Route {
	routes := []Route{
		{Name: "Authenticate", Method: "POST", Path: "/authenticate", BodyRequired: true, Handler: h.Authenticate},
		{Name: "GetState", Method: "GET", Path: "/state", Handler: h.GetState},

		{Name: "ListCategories", Method: "GET", Path: "/category", Restricted: true, Handler: h.ListCategories},
		{Name: "AddCategory", Method: "PUT", Path: "/category/{category}", Restricted: true, BodyRequired: true, Entitlement: entitlement.CategoryAdd, Handler: h.AddCategory},
		{Name: "DeleteCategory", Method: "DELETE", Path: "/category/{category}", Restricted: true, Entitlement: entitlement.CategoryDelete, Handler: h.DeleteCategory},

		{Name: "ListValues", Method: "GET", Path: "/category/{category}/value", Restricted: true, Entitlement: h.Config.ValueListingEntitlement, Handler: h.ListValues},
		{Name: "InsertValues", Method: "POST", Path: "/category/{category}/value", Restricted: true, BodyRequired: true, Entitlement: entitlement.ValueAdd, Handler: h.InsertValues},
		{Name: "DeleteValue", Method: "DELETE", Path: "/category/{category}/value", Restricted: true, BodyRequired: true, Entitlement: entitlement.ValueDelete, Handler: h.DeleteValue},

		{Name: "AdminStop", Method: "POST", Path: "/admin/stop", Restricted: true, Entitlement: entitlement.AdminStop, Handler: h.AdminStop},
		{Name: "AdminReload", Method: "POST", Path: "/admin/reload", Restricted: true, Entitlement: entitlement.AdminReload, Handler: h.AdminReload},
		{Name: "BackupData", Method: "GET", Path: "/admin/backup", Restricted: true, Entitlement: entitlement.AdminBackup, Handler: h.BackupData},
		{Name: "BackupToFile", Method: "POST", Path: "/admin/backup", Restricted: true, BodyRequired: true, Entitlement: entitlement.AdminBackup, Handler: h.BackupToFile},
		{Name: "BackupStatus", Method: "GET", Path: "/admin/backup/status", Restricted: true, Entitlement: entitlement.AdminBackup, Handler: h.BackupStatus},
	}

	for _, kind := range []detailRoute{
		{kind: store.KindMeter, add: entitlement.MeterAdd, modify: entitlement.MeterModify, delete: entitlement.MeterDelete},
		{kind: store.KindNote, add: entitlement.NoteAdd, modify: entitlement.NoteModify, delete: entitlement.NoteDelete},
	} {
		name := string(kind.kind)
		path := "/category/{category}/" + name
		routes = append(routes,
			Route{Name: "List" + name + "s", Method: "GET", Path: path, Restricted: true, Handler: h.ListDetails(kind.kind)},
			Route{Name: "Add" + name, Method: "PUT", Path: path, Restricted: true, BodyRequired: true, Entitlement: kind.add, Handler: h.AddDetail(kind.kind)},
			Route{Name: "Update" + name, Method: "POST", Path: path, Restricted: true, BodyRequired: true, Entitlement: kind.modify, Handler: h.UpdateDetail(kind.kind)},
			Route{Name: "Delete" + name, Method: "DELETE", Path: path, Restricted: true, BodyRequired: true, Entitlement: kind.delete, Handler: h.DeleteDetail(kind.kind)},
		)
	}

	return routes
}

type detailRoute struct {
	kind                store.DetailKind
	add, modify, delete string
}

// RegisterRoutes wires the route table into the router, composing the fixed
// chain gate -> body decode -> entitlement check -> handler for every entry.
func RegisterRoutes(r *mux.Router, cfg *config.Config, h *Handler) {
	m := policy.NewMiddleware()

	for _, route := range h.Routes() {
		handler := route.Handler
		if route.Entitlement != "" {
			handler = m.EnforceEntitlement(route.Entitlement, handler)
		}
		if route.BodyRequired {
			handler = RequireJSONBody(handler)
		}
		if route.Restricted {
			handler = RequireValidToken(cfg, handler)
		}
		r.Name(route.Name).Path(route.Path).Methods(route.Method).HandlerFunc(handler)
	}

	// a known path with a wrong method is a miss, same as an unknown path
	r.NotFoundHandler = StatusNotFoundHandler{}
	r.MethodNotAllowedHandler = StatusNotFoundHandler{}
}

// StatusNotFoundHandler keeps unmatched requests from falling through with
// an empty 200.
type StatusNotFoundHandler struct{}

func (h StatusNotFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusNotFound, MessageResponse{Message: "not found"})
}
