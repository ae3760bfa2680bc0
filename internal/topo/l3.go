package topo

// VLAN is one VLAN definition from the monitoring backend.
type VLAN struct {
	VLANID      int     `json:"vlan_id"`
	VLANName    *string `json:"vlan_name,omitempty"`
	DeviceCount int     `json:"device_count"`
}

// L3Node is a device's appearance inside a VLAN group.
type L3Node struct {
	DeviceID    string `json:"device_id"`
	DisplayName string `json:"display_name"`
	Status      string `json:"status"`
	IsGateway   bool   `json:"is_gateway"`
	VLANIDs     []int  `json:"vlan_ids"`
}

// VLANGroup is a VLAN with its member devices and the gateway devices that
// route for it.
type VLANGroup struct {
	VLANID         int      `json:"vlan_id"`
	VLANName       *string  `json:"vlan_name,omitempty"`
	Devices        []L3Node `json:"devices"`
	GatewayDevices []string `json:"gateway_devices"`
}

// L3Topology is the layer-3 view grouped by VLAN.
type L3Topology struct {
	VLANs          []VLAN      `json:"vlans"`
	VLANGroups     []VLANGroup `json:"vlan_groups"`
	GatewayDevices []string    `json:"gateway_devices"`
}
