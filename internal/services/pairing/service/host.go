package service

// injectHost adds the configured host when the attendance count is odd.
// Set semantics make a second application a no-op
func injectHost(attendees map[string]struct{}, host string) bool {
	if len(attendees)%2 == 0 {
		return false
	}
	if _, ok := attendees[host]; ok {
		return false
	}
	attendees[host] = struct{}{}
	return true
}
