package quest

// Proof is the player-submitted evidence for a target. Exactly one group of
// fields is meaningful depending on the target type.
type Proof struct {
	Code        string
	ScannedCode string
	Coords      *Coordinates
}

// MatchCode checks a code_entry submission. Exact, case-sensitive, no
// normalization.
func MatchCode(t Target, submitted string) bool {
	return t.Type == TargetCodeEntry && submitted == t.Payload.Code
}

// MatchQR checks a qr_scan submission against the stored QR payload.
func MatchQR(t Target, scanned string) bool {
	return t.Type == TargetQRScan && scanned == t.Payload.QRCode
}

// GPSResult reports a gps_location check. Delta is how far outside the
// radius the player is; zero when within range.
type GPSResult struct {
	Within         bool
	DistanceMeters float64
	DeltaMeters    float64
}

// MatchGPS checks a gps_location submission. The radius bound is inclusive.
func MatchGPS(t Target, lat, lng float64) GPSResult {
	d := DistanceMeters(lat, lng, t.Payload.Lat, t.Payload.Lng)
	r := GPSResult{DistanceMeters: d}
	if d <= t.Payload.RadiusMeters {
		r.Within = true
		return r
	}
	r.DeltaMeters = d - t.Payload.RadiusMeters
	return r
}

// MatchOwnedItem checks an owned_item target against the player's live
// quantity of the required item. The item is not consumed.
func MatchOwnedItem(t Target, ownedQuantity int) bool {
	return t.Type == TargetOwnedItem && ownedQuantity > 0
}
