package site

// Page template names.
const (
	PageHome        = "home"
	PageAbout       = "about"
	PageProjects    = "projects"
	PageMaintenance = "maintenance"
)

// BadResponse is the payload of GET /bad.
type BadResponse struct {
	Code         string `json:"code"`
	ErrorMessage string `json:"errorMessage"`
}

func requiredPages(maintenance bool) []string {
	pages := []string{PageHome, PageAbout, PageProjects}
	if maintenance {
		pages = append(pages, PageMaintenance)
	}
	return pages
}

func homeContext() map[string]any {
	return map[string]any{
		"pageTitle":   "Home Page",
		"name":        "Francisco Egloff",
		"hobbiesList": []string{"music", "boardgames"},
	}
}

func aboutContext() map[string]any {
	return map[string]any{"pageTitle": "About Page"}
}

func projectsContext() map[string]any {
	return map[string]any{"pageTitle": "Projects Page"}
}

func maintenanceContext() map[string]any {
	return map[string]any{"pageTitle": "Maintenance"}
}

func badResponse() BadResponse {
	return BadResponse{Code: "404", ErrorMessage: "Error handling request"}
}
