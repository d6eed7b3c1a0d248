// Package domain defines directory types and ports
package domain

// SEInfo is one directory record
type SEInfo struct {
	Index       int    `json:"se_idx"`
	Alias       string `json:"alias"`
	Name        string `json:"name"`
	Region      string `json:"region"`
	RegionIndex int    `json:"region_index"`
	Role        string `json:"role"`
	SEM         bool   `json:"sem"`
}

// VIPRegion is the region assigned to auto-provisioned unknowns
const VIPRegion = "VIP"

// Region index sentinels. 0 is senior leadership, 100 is VIP;
// everything else is geographic
const (
	SSEMRegionIndex = 0
	VIPRegionIndex  = 100
)
