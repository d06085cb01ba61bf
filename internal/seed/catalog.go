package seed

// catalogEntry is a school the generator can put on the list.
type catalogEntry struct {
	Name     string
	Location string
	Lat      float64
	Lng      float64
	NoCoords bool
}

var catalog = []catalogEntry{
	{Name: "Reed College", Location: "Portland, OR", Lat: 45.4812, Lng: -122.6307},
	{Name: "Bard College", Location: "Annandale-on-Hudson, NY", NoCoords: true},
	{Name: "Oberlin College", Location: "Oberlin, OH", Lat: 41.2940, Lng: -82.2218},
	{Name: "Carleton College", Location: "Northfield, MN", Lat: 44.4619, Lng: -93.1543},
	{Name: "Pomona College", Location: "Claremont, CA", Lat: 34.0977, Lng: -117.7120},
	{Name: "Grinnell College", Location: "Grinnell, IA", Lat: 41.7495, Lng: -92.7199},
	{Name: "Macalester College", Location: "Saint Paul, MN", Lat: 44.9379, Lng: -93.1691},
	{Name: "Kenyon College", Location: "Gambier, OH", NoCoords: true},
	{Name: "Wesleyan University", Location: "Middletown, CT", Lat: 41.5566, Lng: -72.6569},
	{Name: "Swarthmore College", Location: "Swarthmore, PA", Lat: 39.9057, Lng: -75.3544},
	{Name: "Vassar College", Location: "Poughkeepsie, NY", Lat: 41.6868, Lng: -73.8955},
	{Name: "Middlebury College", Location: "Middlebury, VT", Lat: 44.0081, Lng: -73.1779},
	{Name: "Colby College", Location: "Waterville, ME", Lat: 44.5639, Lng: -69.6626},
	{Name: "Bowdoin College", Location: "Brunswick, ME", Lat: 43.9076, Lng: -69.9639},
	{Name: "Hampshire College", Location: "Amherst, MA", NoCoords: true},
	{Name: "Whitman College", Location: "Walla Walla, WA", Lat: 46.0708, Lng: -118.3290},
	{Name: "Occidental College", Location: "Los Angeles, CA", Lat: 34.1272, Lng: -118.2109},
	{Name: "Davidson College", Location: "Davidson, NC", Lat: 35.5006, Lng: -80.8454},
}

var taskTitles = []string{
	"Request transcripts",
	"Draft personal essay",
	"Send test scores",
	"Ask for recommendation",
	"Finish supplement",
	"Pay application fee",
	"Schedule interview",
	"Submit financial aid forms",
}

var (
	buckets       = []string{"reach", "target", "safety", ""}
	decisionTypes = []string{"ED", "EA", "RD", "REA"}
	listStatuses  = []string{"Researching", "Applying", "Visited"}
)
