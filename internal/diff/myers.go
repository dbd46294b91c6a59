package diff

// editOp is a single operation in an edit script.
type editOp int

const (
	opEqual editOp = iota
	opDelete
	opInsert
)

// edit is one step of an edit script between two sequences a and b.
// aIndex is valid for opEqual and opDelete, bIndex for opEqual and opInsert;
// the unused index is -1.
type edit struct {
	op     editOp
	aIndex int
	bIndex int
}

// editScript computes a minimal edit script transforming a into b using
// Myers' O(ND) greedy algorithm. Matching is deterministic and left to right:
// the Nth occurrence of a repeated element in a pairs with the Nth surviving
// occurrence in b, never an arbitrary later one. Chain lookups and the ledger
// depend on that ordering, so do not swap this for a hash-based diff.
func editScript(a, b []string) []edit {
	n, m := len(a), len(b)
	if n == 0 && m == 0 {
		return nil
	}

	max := n + m
	offset := max
	v := make([]int, 2*max+1)
	var trace [][]int

	dFinal := -1
search:
	for d := 0; d <= max; d++ {
		snapshot := make([]int, len(v))
		copy(snapshot, v)
		trace = append(trace, snapshot)

		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1]
			} else {
				x = v[offset+k-1] + 1
			}
			y := x - k
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			v[offset+k] = x
			if x >= n && y >= m {
				dFinal = d
				break search
			}
		}
	}

	// Walk the trace backwards to recover the script.
	var rev []edit
	x, y := n, m
	for d := dFinal; d > 0; d-- {
		prev := trace[d]
		k := x - y

		var prevK int
		if k == -d || (k != d && prev[offset+k-1] < prev[offset+k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := prev[offset+prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			rev = append(rev, edit{op: opEqual, aIndex: x - 1, bIndex: y - 1})
			x--
			y--
		}
		if x == prevX {
			rev = append(rev, edit{op: opInsert, aIndex: -1, bIndex: y - 1})
			y--
		} else {
			rev = append(rev, edit{op: opDelete, aIndex: x - 1, bIndex: -1})
			x--
		}
	}
	for x > 0 && y > 0 {
		rev = append(rev, edit{op: opEqual, aIndex: x - 1, bIndex: y - 1})
		x--
		y--
	}

	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}
