package testdata

var Track_iOS_stationary_1 = `{
  "id": 0,
  "type": "Feature",
  "geometry": {
    "type": "Point",
    "coordinates": [-93.2554931640625, 44.98896789550781]
  },
  "properties": {
    "Accuracy": 23.13,
    "Activity": "Unknown",
    "Alias": "rye",
    "AverageActivePace": 0.56,
    "BatteryLevel": 0.95,
    "BatteryStatus": "unplugged",
    "CurrentCadence": 1.57,
    "CurrentPace": 1.06,
    "CurrentTripStart": "2024-12-16T00:29:02.773Z",
    "Distance": 54626.54,
    "Elevation": 328.43,
    "FloorsAscended": 32,
    "FloorsDescended": 28,
    "Heading": -1,
    "HeartRate": 80,
    "Name": "Rye16",
    "NetworkInfo": "{\"ssidData\":\"{length = 12, bytes = 0x42616e616e6120486f74656c}\",\"bssid\":\"6c:70:9f:de:59:89\",\"ssid\":\"Banana Hotel\"}",
    "NumberOfSteps": 52001,
    "Pressure": 97.76,
    "Speed": -1,
    "Time": "2024-12-23T15:31:56.728Z",
    "UUID": "5D37B5EA-6E0B-41FE-8A72-2BB681D661DA",
    "UnixTime": 1734967916,
    "Version": "V.customizableCatTrackHat"
  }
}
`

var Track_Android_stationary_1 = `{
  "id": 0,
  "type": "Feature",
  "bbox": [-113.4730765, 47.1787276, -113.4730765, 47.1787276],
  "geometry": {
    "type": "Point",
    "coordinates": [-113.4730765, 47.1787276]
  },
  "properties": {
    "AccelerometerX": -1.91,
    "AccelerometerY": -0.86,
    "AccelerometerZ": -9.57,
    "Accuracy": 3.9,
    "Activity": "Stationary",
    "ActivityConfidence": 100,
    "AmbientTemp": null,
    "BatteryLevel": 1,
    "BatteryStatus": "unplugged",
    "CurrentTripStart": "2024-12-23T15:01:41.196997Z",
    "Distance": 0,
    "Elevation": 1258.4,
    "GyroscopeX": 0,
    "GyroscopeY": 0,
    "GyroscopeZ": 0,
    "Heading": -1,
    "Lightmeter": 0,
    "Name": "ranga-moto-act3",
    "NumberOfSteps": 51,
    "Pressure": null,
    "Speed": 0.06,
    "Time": "2024-12-23T15:05:34.710Z",
    "UUID": "76170e959f967f40",
    "UnixTime": 1734966334,
    "UserAccelerometerX": 0,
    "UserAccelerometerY": 0,
    "UserAccelerometerZ": 0.02,
    "Version": "gcps/v0.0.0+4",
    "heading_accuracy": -1,
    "speed_accuracy": 3.2,
    "vAccuracy": 1
  }
}
`

// ReplayTracks are newline-delimited cat tracks for two people, in time order.
// The fourth line repeats the third.
var ReplayTracks = `{"type":"Feature","geometry":{"type":"Point","coordinates":[-93.25549,44.98896]},"properties":{"Accuracy":10,"Name":"rye","Time":"2024-12-23T15:00:00Z","UUID":"5D37B5EA"}}
{"type":"Feature","geometry":{"type":"Point","coordinates":[-113.4730765,47.1787276]},"properties":{"Accuracy":3.9,"Name":"ranga","Time":"2024-12-23T15:00:05Z","UUID":"76170e95"}}
{"type":"Feature","geometry":{"type":"Point","coordinates":[-93.25549,44.99806]},"properties":{"Accuracy":10,"Name":"rye","Time":"2024-12-23T15:10:00Z","UUID":"5D37B5EA"}}
{"type":"Feature","geometry":{"type":"Point","coordinates":[-93.25549,44.99806]},"properties":{"Accuracy":10,"Name":"rye","Time":"2024-12-23T15:10:00Z","UUID":"5D37B5EA"}}
{"type":"Feature","geometry":{"type":"Point","coordinates":[-113.4730765,47.1787276]},"properties":{"Accuracy":3.9,"Name":"ranga","Time":"2024-12-23T15:15:05Z","UUID":"76170e95"}}
{"type":"Feature","geometry":{"type":"Point","coordinates":[-93.25549,45.012]},"properties":{"Accuracy":10,"Name":"rye","Time":"2024-12-23T15:20:00Z","UUID":"5D37B5EA"}}
`

// FeedDocument is a location bridge response, with one millisecond epoch
// and one RFC3339 timestamp.
var FeedDocument = `{
  "me": {"name": "Ia", "lat": 44.98897, "lon": -93.25549, "accuracy": 12, "timestamp": 1734966000000},
  "people": [
    {"name": "Rye Cat", "lat": 44.99806, "lon": -93.25549, "accuracy": 10, "timestamp": 1734966300000},
    {"name": "Ági", "lat": 47.4979, "lon": 19.0402, "accuracy": 25.5, "timestamp": "2024-12-23T15:05:34.710Z"}
  ]
}
`
