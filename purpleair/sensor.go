package purpleair

import (
	"time"

	"github.com/photonicat/aqi_matrix_display/aqi"
)

// SensorResponse is the body of GET /sensors/{id}.
type SensorResponse struct {
	APIVersion    string `json:"api_version"`
	TimeStamp     int64  `json:"time_stamp"`
	DataTimeStamp int64  `json:"data_time_stamp"`
	Sensor        Sensor `json:"sensor"`
}

// Sensor holds the requested fields. Fields the API did not return stay
// nil or zero.
type Sensor struct {
	SensorIndex int      `json:"sensor_index"`
	Name        string   `json:"name"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Altitude    *float64 `json:"altitude"`
	LastSeen    int64    `json:"last_seen"`
	PM25        *float64 `json:"pm2.5"`
	Confidence  *float64 `json:"confidence"`
	Humidity    *float64 `json:"humidity"`
	Temperature *float64 `json:"temperature"`
	Pressure    *float64 `json:"pressure"`
}

// PM25Reading converts the pm2.5 field. A missing or null value is
// aqi.NoData.
func (r *SensorResponse) PM25Reading() aqi.Reading {
	if r == nil || r.Sensor.PM25 == nil {
		return aqi.NoData
	}
	return aqi.PM25(*r.Sensor.PM25)
}

// LastSeen is when the sensor last reported, in UTC. It is the zero time
// when the field was not requested.
func (r *SensorResponse) LastSeen() time.Time {
	if r.Sensor.LastSeen == 0 {
		return time.Time{}
	}
	return time.Unix(r.Sensor.LastSeen, 0).UTC()
}

// Age is how old the reading was when the API answered.
func (r *SensorResponse) Age() time.Duration {
	if r.Sensor.LastSeen == 0 || r.TimeStamp == 0 {
		return 0
	}
	return time.Duration(r.TimeStamp-r.Sensor.LastSeen) * time.Second
}
