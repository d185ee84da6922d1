package caldav

// Calendar is a CalDAV collection discovered on the server.
type Calendar struct {
	ID          string
	DisplayName string
	URL         string
}
