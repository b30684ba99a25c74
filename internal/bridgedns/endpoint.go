package bridgedns

const httpsScheme = "https://"

// PathFunc returns the URL path under which a bridge receives events.
type PathFunc func(ownerID, bridgeID string) string

// BrokerPath addresses the bridge's broker as /<owner>/<bridge>.
func BrokerPath(ownerID, bridgeID string) string {
	return "/" + ownerID + "/" + bridgeID
}

// BuildEndpointURL returns the public URL of the bridge.
func (s *Service) BuildEndpointURL(bridgeID, ownerID string) string {
	return httpsScheme + s.BuildHost(bridgeID) + s.path(ownerID, bridgeID)
}
