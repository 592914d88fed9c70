package engine

// reconstructPath builds the final path once meet has been discovered in
// both frontiers' parent maps (§3 Path, §4.5 Path reconstruction): walk
// parentF from meet to the forward root, reverse, then walk parentB from
// meet to the backward root, appended so meet appears exactly once.
func reconstructPath(meet string, parentF, parentB map[string]*string) []string {
	var fwd []string
	for cur := meet; ; {
		fwd = append(fwd, cur)
		p, ok := parentF[cur]
		if !ok || p == nil {
			break
		}
		cur = *p
	}
	reverse(fwd)

	var bwd []string
	if p, ok := parentB[meet]; ok && p != nil {
		for cur := *p; ; {
			bwd = append(bwd, cur)
			next, ok := parentB[cur]
			if !ok || next == nil {
				break
			}
			cur = *next
		}
	}

	return append(fwd, bwd...)
}

func reverse(ss []string) {
	for i, j := 0, len(ss)-1; i < j; i, j = i+1, j-1 {
		ss[i], ss[j] = ss[j], ss[i]
	}
}
