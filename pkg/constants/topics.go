package constants

// CalendarTopics are the event title keywords the default filter matches
// against, case-insensitively. An event passes when its title contains any
// of these as a substring.
var CalendarTopics = []string{
	"Unemployment Rate",
	"Unemployment Claims",
	"ADP",
	"Non-Farm Employment Change",
	"GDP",
	"Consumer Price Index",
	"CPI",
	"ISM Services PMI",
	"ISM Manufacturing PMI",
	"JOLTS",
	"Producer Price Index",
	"PPI",
	"Retail Sales",
	"Flash Services PMI",
	"FOMC",
	"Fed Interest Rate Decision",
}

// CalendarCountry is the currency code the default filter keeps
const CalendarCountry = "USD"
