package feeds

import "bytes"

// Tagged schema for the upstream SIRI StopMonitoring JSON feed. Only the
// fields the normalizer consumes are declared; required structure is
// validated up front and missing pieces fail closed as ErrMalformedPayload.

type siriEnvelope struct {
	ServiceDelivery *siriServiceDelivery `json:"ServiceDelivery"`
}

type siriServiceDelivery struct {
	StopMonitoringDelivery *siriStopMonitoringDelivery `json:"StopMonitoringDelivery"`
}

type siriStopMonitoringDelivery struct {
	MonitoredStopVisit []siriStopVisit `json:"MonitoredStopVisit"`
}

type siriStopVisit struct {
	MonitoredVehicleJourney *siriVehicleJourney `json:"MonitoredVehicleJourney"`
}

type siriVehicleJourney struct {
	LineRef         string          `json:"LineRef"`
	DirectionRef    string          `json:"DirectionRef"`
	DestinationName string          `json:"DestinationName"`
	MonitoredCall   *siriStopCall   `json:"MonitoredCall"`
}

type siriStopCall struct {
	StopPointRef        string   `json:"StopPointRef"`
	StopPointName       string   `json:"StopPointName"`
	DestinationDisplay  string   `json:"DestinationDisplay"`
	ExpectedArrivalTime string   `json:"ExpectedArrivalTime"`
	AimedArrivalTime    string   `json:"AimedArrivalTime"`
	VehicleAtStop       flexBool `json:"VehicleAtStop"`
}

// flexBool accepts the boolean and quoted-string encodings the upstream feed
// has been observed to emit for VehicleAtStop.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	switch string(data) {
	case "true":
		*b = true
	default:
		*b = false
	}
	return nil
}

func (b flexBool) Bool() bool { return bool(b) }
