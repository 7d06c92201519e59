package models

// Device represents a document of the "dispositivos" collection.
//
// A device_id is unique per owner; different users may register the same device_id.
type Device struct {
	ID       ID     `bson:"_id,omitempty"`
	DeviceID string `bson:"device_id"`
	Name     string `bson:"name"`
	Username string `bson:"username"`
}

// DeviceResponse is the public representation of a device
type DeviceResponse struct {
	ID       ID     `json:"id"`
	DeviceID string `json:"device_id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// ToResponse projects the device to its public representation
func (d *Device) ToResponse() DeviceResponse {
	return DeviceResponse{
		ID:       d.ID,
		DeviceID: d.DeviceID,
		Name:     d.Name,
		Username: d.Username,
	}
}

// CreateDeviceRequest represents a device registration request
type CreateDeviceRequest struct {
	DeviceID string `json:"device_id" validate:"required"`
	Name     string `json:"name" validate:"required"`
}
