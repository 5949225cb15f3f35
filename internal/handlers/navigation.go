package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type NavItem struct {
	Title string `json:"title"`
	Href  string `json:"href"`
	Icon  string `json:"icon"`
}

var navItems = []NavItem{
	{Title: "Home", Href: "/", Icon: "Home"},
	{Title: "Accounts", Href: "/accounts", Icon: "Landmark"},
	{Title: "Budget", Href: "/budget", Icon: "ListChecks"},
	{Title: "AI Budgeting", Href: "/budgeting-tool", Icon: "Lightbulb"},
	{Title: "Settings", Href: "/settings", Icon: "Settings"},
}

func Navigation(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]NavItem{"items": navItems})
}
