package site

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// registerRoutes registers the site's pages. HEAD is answered by the GET
// handlers; every other unmatched request gets the default not-found reply.
func (s *Server) registerRoutes() {
	s.router.Use(middleware.GetHead)

	s.router.Get("/", s.page(PageHome, homeContext))
	s.router.Get("/about", s.page(PageAbout, aboutContext))
	s.router.Get("/projects", s.page(PageProjects, projectsContext))
	s.router.Get("/bad", s.handleBad)

	s.router.NotFound(http.NotFound)
	s.router.MethodNotAllowed(http.NotFound)
}
