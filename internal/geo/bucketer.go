package geo

import (
	"github.com/opsboard/opsboard/internal/aggregate"
	"github.com/opsboard/opsboard/pkg/field"
	"github.com/opsboard/opsboard/pkg/risk"
)

// Role identifies which location-bearing sub-entity of a row a node
// aggregates.
type Role string

// Node roles.
const (
	RoleCustomer Role = "customer"
	RoleSupplier Role = "supplier"
	RolePlant    Role = "plant"
)

// roleOffsets are the deterministic per-role nudges applied when
// multiple roles resolve to the same coordinate, so bubbles do not
// fully overlap on the map.
var roleOffsets = map[Role]Coordinate{
	RoleCustomer: {Lat: 0, Lon: 0},
	RoleSupplier: {Lat: 0.45, Lon: 0.45},
	RolePlant:    {Lat: -0.45, Lon: 0.45},
}

// Observation is one row's contribution to a single (role, location)
// node. A row with all three location fields present produces three
// observations, one per role.
type Observation struct {
	Role     Role
	Location string
	Region   string

	Cost         *float64
	LeadTimeDays *float64
	DefectPieces *float64
	OEE          *float64
	RiskScore    *float64
}

// Node is one finalized map entity.
type Node struct {
	Role       Role       `json:"role"`
	Location   string     `json:"location"`
	Coordinate Coordinate `json:"coordinate"`

	CostTotal   float64  `json:"cost_total"`
	DefectTotal float64  `json:"defect_total"`
	LeadTimeAvg *float64 `json:"lead_time_avg"`
	OEEAvg      *float64 `json:"oee_avg"`
	RiskAvg     *float64 `json:"risk_avg"`
	RiskBucket  string   `json:"risk_bucket"`
	Rows        int      `json:"rows"`
}

type nodeKey struct {
	role Role
	loc  string
}

type nodeAcc struct {
	location string
	region   string

	cost     aggregate.Sum
	defects  aggregate.Sum
	leadTime aggregate.Mean
	oee      aggregate.Mean
	riskAvg  aggregate.Mean
	rows     int
}

// Bucketer accumulates observations into (role, location)-keyed nodes.
// Each role's accumulators are independent: one row feeding customer,
// supplier, and plant observations contributes to three nodes.
type Bucketer struct {
	resolver Resolver
	nodes    map[nodeKey]*nodeAcc
	order    []nodeKey
}

// NewBucketer creates a Bucketer using the injected coordinate resolver.
func NewBucketer(r Resolver) *Bucketer {
	return &Bucketer{
		resolver: r,
		nodes:    make(map[nodeKey]*nodeAcc),
	}
}

// Observe folds one observation into its node. Observations without a
// location string are dropped; there is nothing to key or plot.
func (b *Bucketer) Observe(obs Observation) {
	loc := field.Norm(obs.Location)
	if loc == "" {
		return
	}

	k := nodeKey{role: obs.Role, loc: loc}
	acc, ok := b.nodes[k]
	if !ok {
		acc = &nodeAcc{location: obs.Location, region: obs.Region}
		b.nodes[k] = acc
		b.order = append(b.order, k)
	}

	acc.cost.Observe(obs.Cost)
	acc.defects.Observe(obs.DefectPieces)
	acc.leadTime.Observe(obs.LeadTimeDays)
	acc.oee.Observe(obs.OEE)
	acc.riskAvg.Observe(obs.RiskScore)
	acc.rows++
}

// Nodes finalizes the accumulated entities. Nodes whose location
// resolves to no coordinate are excluded entirely. When several roles
// share one resolved coordinate, each node is nudged by its role's
// fixed offset.
func (b *Bucketer) Nodes() []Node {
	type resolved struct {
		node Node
		key  nodeKey
	}

	coordUses := make(map[Coordinate]int)
	out := make([]resolved, 0, len(b.order))

	for _, k := range b.order {
		acc := b.nodes[k]
		coord, ok := b.resolver.Resolve(acc.location, acc.region)
		if !ok {
			continue
		}
		coordUses[coord]++

		n := Node{
			Role:        k.role,
			Location:    acc.location,
			Coordinate:  coord,
			CostTotal:   acc.cost.Value(),
			DefectTotal: acc.defects.Value(),
			LeadTimeAvg: acc.leadTime.Value(),
			OEEAvg:      acc.oee.Value(),
			RiskAvg:     acc.riskAvg.Value(),
			Rows:        acc.rows,
		}
		if n.RiskAvg != nil {
			n.RiskBucket = risk.Bucket(*n.RiskAvg)
		}
		out = append(out, resolved{node: n, key: k})
	}

	nodes := make([]Node, 0, len(out))
	for _, r := range out {
		n := r.node
		if coordUses[n.Coordinate] > 1 {
			off := roleOffsets[r.key.role]
			n.Coordinate.Lat += off.Lat
			n.Coordinate.Lon += off.Lon
		}
		nodes = append(nodes, n)
	}
	return nodes
}
