package community

// Plurality returns the most chosen delivery time across the roster.
//
// Counts are compared with strict greater-than in the order Morning, Afternoon,
// Evening, so the earlier slot keeps every tie it takes part in. Evening is
// compared against the running winner, not against Afternoon alone.
func Plurality(members []Member) DeliveryTime {
	counts := make(map[DeliveryTime]int, len(DeliveryTimes))
	for _, member := range members {
		counts[member.DeliveryTime]++
	}

	winner := Morning
	winningCount := counts[Morning]
	if counts[Afternoon] > winningCount {
		winner = Afternoon
		winningCount = counts[Afternoon]
	}
	if counts[Evening] > winningCount {
		winner = Evening
	}
	return winner
}
