package handlers

import "net/http"

// Feature is a card on the home page.
type Feature struct {
	Title       string
	Description string
	Icon        string
	Href        string
}

var homeFeatures = []Feature{
	{Title: "Ask AI", Description: "Ask general health questions and hear the answers.", Icon: "💬", Href: "/ask-ai"},
	{Title: "Medicine Information", Description: "Dosages, interactions, side effects and storage.", Icon: "💊", Href: "/medicine"},
	{Title: "Health Assessment", Description: "Describe your symptoms and get guidance and a PDF report.", Icon: "📋", Href: "/health-form"},
	{Title: "Mental Health", Description: "Check in with how you feel and find support.", Icon: "🧠", Href: "/mental-health"},
	{Title: "Health Awareness", Description: "Lessons about natural remedies, with short quizzes.", Icon: "🌱", Href: "/awareness"},
	{Title: "Health Quest", Description: "Level up by answering health questions.", Icon: "🏆", Href: "/health-quest"},
	{Title: "Sunshine Hero", Description: "Collect healthy items in a 60 second game.", Icon: "🌞", Href: "/sunshine-hero"},
	{Title: "Near Me", Description: "Health resources and remedies in your area.", Icon: "📍", Href: "/location"},
	{Title: "CareChain Vault", Description: "Tamper-evident health records and demo tokens.", Icon: "🔐", Href: "/carechain-vault"},
	{Title: "Accessibility", Description: "Font size, contrast, voice and motion settings.", Icon: "♿", Href: "/settings"},
}

// HomeViewData is the home page's data.
type HomeViewData struct {
	Features []Feature
}

// Home renders the landing page.
func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, "home", "Home", "home", HomeViewData{Features: homeFeatures})
}
