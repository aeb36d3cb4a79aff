package universe

import "sort"

//Template represent the seeding template which can used to settle the universe with predefined data
type Template struct {
	Name        string  //template name
	Descr       string  //template descr
	Coordinates []Coord //cells to make alive
	Gliders     []Coord //centres of gliders to stamp after the cells are set
}

//BuiltinTemplates are registered on every new Simulation
var BuiltinTemplates = []Template{
	{
		Name:        "block",
		Descr:       "2x2 still life",
		Coordinates: []Coord{{1, 1}, {1, 2}, {2, 1}, {2, 2}},
	},
	{
		Name:        "blinker",
		Descr:       "period 2 oscillator",
		Coordinates: []Coord{{2, 1}, {2, 2}, {2, 3}},
	},
	{
		Name:    "glider",
		Descr:   "a glider travelling down and right",
		Gliders: []Coord{{1, 1}},
	},
	{
		Name:  "sample",
		Descr: "a small colony that evolves for a while",
		Coordinates: []Coord{
			{1, 1}, {2, 1},
			{1, 2}, {2, 2},
			{3, 3},
			{2, 4},
			{3, 4},
			{3, 5},
		},
	},
}

//TemplateNames returns the sorted names of the builtin templates
func TemplateNames() []string {
	names := make([]string, 0, len(BuiltinTemplates))
	for _, t := range BuiltinTemplates {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}
