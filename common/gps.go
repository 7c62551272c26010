package common

/*
https://en.wikipedia.org/wiki/Decimal_degrees?useskin=vector

decimal places	decimal degrees	at the equator	object recognizable at this scale
3		0.001		111 m		neighborhood, street
4		0.0001		11.1 m		individual street, large buildings
5		0.00001		1.11 m		individual trees, houses
6		0.000001	111 mm		individual people
7		0.0000001	11.1 mm		practical limit of commercial surveying
*/

// GPSPrecision5 is the precision for individual trees, houses.
const GPSPrecision5 = 5
