package budget

import (
	"fmt"
	"strings"
)

// Icon is one of the closed set of category glyphs the UI ships.
type Icon string

const (
	IconUtensils    Icon = "Utensils"
	IconCar         Icon = "Car"
	IconHome        Icon = "Home"
	IconShoppingBag Icon = "ShoppingBag"
	IconTicket      Icon = "Ticket"
	IconDollarSign  Icon = "DollarSign"
	IconTarget      Icon = "Target"
)

type IconInfo struct {
	Name  Icon   `json:"name"`
	Label string `json:"label"`
}

var iconTable = []IconInfo{
	{Name: IconUtensils, Label: "Food & Dining"},
	{Name: IconCar, Label: "Transportation"},
	{Name: IconHome, Label: "Housing & Utilities"},
	{Name: IconShoppingBag, Label: "Shopping"},
	{Name: IconTicket, Label: "Entertainment"},
	{Name: IconDollarSign, Label: "Income & Savings"},
	{Name: IconTarget, Label: "Goals"},
}

var iconsByName = func() map[string]Icon {
	index := make(map[string]Icon, len(iconTable))
	for _, info := range iconTable {
		index[strings.ToLower(string(info.Name))] = info.Name
	}
	return index
}()

// Icons lists the supported icons in display order.
func Icons() []IconInfo {
	return append([]IconInfo(nil), iconTable...)
}

// ParseIcon resolves an icon name case-insensitively. Unknown names are an error.
func ParseIcon(name string) (Icon, error) {
	icon, ok := iconsByName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("unknown icon %q", name)
	}
	return icon, nil
}
