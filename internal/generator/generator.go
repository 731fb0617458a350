package generator

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vanshika/wealthnet/internal/domain"
)

// Dataset is a generated or loaded network.
type Dataset struct {
	Nodes []domain.Node `json:"nodes" yaml:"nodes"`
	Edges []domain.Edge `json:"edges" yaml:"edges"`
}

// Network converts the dataset into a network payload with stats.
func (d Dataset) Network() domain.Network {
	return domain.Network{
		Nodes: d.Nodes,
		Edges: d.Edges,
		Stats: domain.ComputeStats(d.Nodes, d.Edges),
	}
}

// Generator produces synthetic relationship networks for a wealth desk.
type Generator struct {
	cfg       Config
	rand      *rand.Rand
	fragments nameFragments
	edges     []domain.Edge
	seen      map[string]struct{}
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.NumRMs <= 0 {
		cfg.NumRMs = def.NumRMs
	}
	if cfg.NumPersons <= 0 {
		cfg.NumPersons = def.NumPersons
	}
	if cfg.NumCompanies <= 0 {
		cfg.NumCompanies = def.NumCompanies
	}
	if cfg.NumEvents <= 0 {
		cfg.NumEvents = def.NumEvents
	}
	if cfg.NumNetworks <= 0 {
		cfg.NumNetworks = def.NumNetworks
	}
	if cfg.KnowsPerPerson <= 0 {
		cfg.KnowsPerPerson = def.KnowsPerPerson
	}
	if cfg.ClientRatio <= 0 || cfg.ClientRatio > 1 {
		cfg.ClientRatio = def.ClientRatio
	}
	if cfg.InfluencerRate < 0 || cfg.InfluencerRate > 1 {
		cfg.InfluencerRate = def.InfluencerRate
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:       cfg,
		rand:      rand.New(rand.NewSource(cfg.Seed)),
		fragments: defaultNameFragments(),
		seen:      make(map[string]struct{}),
	}
}

// RMID returns the id of the i-th relationship manager (1-based).
func RMID(i int) string { return fmt.Sprintf("rm-%d", i) }

// Generate synthesises a network. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	g.edges = nil
	g.seen = make(map[string]struct{})

	rms := make([]domain.Node, g.cfg.NumRMs)
	for i := range rms {
		name := g.randomFullName()
		rms[i] = domain.Node{
			ID:    RMID(i + 1),
			Type:  domain.NodeRM,
			Label: name,
			Properties: domain.RMProperties{
				Email: g.emailFor(name, "wealthdesk.in"),
				Role:  g.pick(g.fragments.rmRoles),
			},
		}
	}

	persons := make([]domain.Node, g.cfg.NumPersons)
	clients := 0
	for i := range persons {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		name := g.randomFullName()
		props := domain.PersonProperties{
			Designation:  g.pick(g.fragments.designations),
			NetWorth:     float64(5+g.rand.Intn(995)) * 1e6,
			Sector:       g.pick(g.fragments.sectors),
			IsClient:     g.rand.Float64() < g.cfg.ClientRatio,
			IsInfluencer: g.rand.Float64() < g.cfg.InfluencerRate,
			Email:        g.emailFor(name, g.pick(g.fragments.domains)),
		}
		persons[i] = domain.Node{
			ID:         fmt.Sprintf("p-%04d", i+1),
			Type:       domain.NodePerson,
			Label:      name,
			Properties: props,
		}
		if props.IsClient {
			clients++
			persons[i].Metadata = &domain.NodeMetadata{LinkedClientID: fmt.Sprintf("CL-%05d", clients)}
		}
	}

	companies := make([]domain.Node, g.cfg.NumCompanies)
	for i := range companies {
		name := g.pick(g.fragments.companyStems) + " " + g.pick(g.fragments.companySuffixes)
		founded := 1970 + g.rand.Intn(54)
		companies[i] = domain.Node{
			ID:    fmt.Sprintf("co-%03d", i+1),
			Type:  domain.NodeCompany,
			Label: name,
			Properties: domain.CompanyProperties{
				CIN:       fmt.Sprintf("U%05dMH%dPTC%06d", g.rand.Intn(99999), founded, g.rand.Intn(999999)),
				Sector:    g.pick(g.fragments.sectors),
				Valuation: float64(50+g.rand.Intn(9950)) * 1e6,
				Founded:   founded,
			},
		}
	}

	events := make([]domain.Node, g.cfg.NumEvents)
	for i := range events {
		kind := g.pick(g.fragments.eventKinds)
		date := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, g.rand.Intn(540))
		events[i] = domain.Node{
			ID:    fmt.Sprintf("ev-%03d", i+1),
			Type:  domain.NodeLiquidityEvent,
			Label: kind,
			Properties: domain.LiquidityEventProperties{
				Amount:    float64(10+g.rand.Intn(990)) * 1e6,
				Date:      date.Format(time.DateOnly),
				EventKind: kind,
			},
		}
	}

	networks := make([]domain.Node, g.cfg.NumNetworks)
	members := make([]int, g.cfg.NumNetworks)
	categories := make([]string, g.cfg.NumNetworks)
	for i := range networks {
		category := g.pick(g.fragments.networkCategories)
		categories[i] = category
		networks[i] = domain.Node{
			ID:    fmt.Sprintf("net-%03d", i+1),
			Type:  domain.NodeNetwork,
			Label: g.pick(g.fragments.networkNames) + " " + category,
		}
	}

	// RMs manage clients and know a few prospects.
	for _, p := range persons {
		rm := rms[g.rand.Intn(len(rms))]
		if p.IsClient() {
			if err := g.link(rm.ID, p.ID, domain.EdgeManages); err != nil {
				return Dataset{}, err
			}
		} else if g.rand.Float64() < 0.15 {
			if err := g.link(rm.ID, p.ID, domain.EdgeKnows); err != nil {
				return Dataset{}, err
			}
		}
	}

	for i, p := range persons {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		for k := g.rand.Intn(2 * g.cfg.KnowsPerPerson); k >= 0; k-- {
			j := g.rand.Intn(len(persons))
			if j == i {
				continue
			}
			if err := g.link(p.ID, persons[j].ID, domain.EdgeKnows); err != nil {
				return Dataset{}, err
			}
		}
		if g.rand.Float64() < 0.25 {
			c := companies[g.rand.Intn(len(companies))]
			rel := domain.EdgePromoterOf
			if g.rand.Intn(2) == 0 {
				rel = domain.EdgeDirectorOf
			}
			if err := g.link(p.ID, c.ID, rel); err != nil {
				return Dataset{}, err
			}
		}
		if g.rand.Float64() < 0.2 {
			c := companies[g.rand.Intn(len(companies))]
			if err := g.link(p.ID, c.ID, domain.EdgeInvestorIn); err != nil {
				return Dataset{}, err
			}
		}
		if g.rand.Float64() < 0.4 {
			n := g.rand.Intn(len(networks))
			if !g.linked(p.ID, networks[n].ID, domain.EdgeMemberOf) {
				if err := g.link(p.ID, networks[n].ID, domain.EdgeMemberOf); err != nil {
					return Dataset{}, err
				}
				members[n]++
			}
		}
	}

	for _, ev := range events {
		c := companies[g.rand.Intn(len(companies))]
		if err := g.link(ev.ID, c.ID, domain.EdgeAffects); err != nil {
			return Dataset{}, err
		}
		for k := 1 + g.rand.Intn(2); k > 0; k-- {
			p := persons[g.rand.Intn(len(persons))]
			if err := g.link(ev.ID, p.ID, domain.EdgeInvolves); err != nil {
				return Dataset{}, err
			}
		}
	}

	for i := range networks {
		networks[i].Properties = domain.NetworkProperties{
			MemberCount: members[i],
			Category:    categories[i],
		}
	}

	nodes := make([]domain.Node, 0, len(rms)+len(persons)+len(companies)+len(events)+len(networks))
	nodes = append(nodes, rms...)
	nodes = append(nodes, persons...)
	nodes = append(nodes, companies...)
	nodes = append(nodes, events...)
	nodes = append(nodes, networks...)
	return Dataset{Nodes: nodes, Edges: g.edges}, nil
}

func edgeKey(source, target string, rel domain.EdgeType) string {
	if rel == domain.EdgeKnows && target < source {
		source, target = target, source
	}
	return source + "|" + string(rel) + "|" + target
}

func (g *Generator) linked(source, target string, rel domain.EdgeType) bool {
	_, ok := g.seen[edgeKey(source, target, rel)]
	return ok
}

// link adds a deduplicated edge. Knows edges are symmetric for dedup purposes.
func (g *Generator) link(source, target string, rel domain.EdgeType) error {
	key := edgeKey(source, target, rel)
	if _, ok := g.seen[key]; ok {
		return nil
	}
	id, err := uuid.NewRandomFromReader(g.rand)
	if err != nil {
		return fmt.Errorf("edge id: %w", err)
	}
	g.seen[key] = struct{}{}
	g.edges = append(g.edges, domain.Edge{
		ID:     id.String(),
		Source: source,
		Target: target,
		Type:   rel,
		Label:  g.fragments.edgeLabels[rel],
	})
	return nil
}

func (g *Generator) pick(options []string) string {
	return options[g.rand.Intn(len(options))]
}

func (g *Generator) randomFullName() string {
	return g.pick(g.fragments.first) + " " + g.pick(g.fragments.last)
}

func (g *Generator) emailFor(name, domainName string) string {
	local := strings.ToLower(strings.ReplaceAll(name, " ", "."))
	return fmt.Sprintf("%s%d@%s", local, g.rand.Intn(100), domainName)
}

type nameFragments struct {
	first             []string
	last              []string
	domains           []string
	designations      []string
	sectors           []string
	rmRoles           []string
	companyStems      []string
	companySuffixes   []string
	eventKinds        []string
	networkNames      []string
	networkCategories []string
	edgeLabels        map[domain.EdgeType]string
}

func defaultNameFragments() nameFragments {
	return nameFragments{
		first:           []string{"Aarav", "Vihaan", "Ananya", "Diya", "Kabir", "Ishaan", "Meera", "Rohan", "Saanvi", "Arjun", "Priya", "Neha", "Vikram", "Zara", "Kiran"},
		last:            []string{"Mehta", "Shah", "Iyer", "Kapoor", "Reddy", "Nair", "Bose", "Malhotra", "Gupta", "Desai", "Rao", "Singh"},
		domains:         []string{"example.com", "mail.in", "family-office.in", "ventures.co"},
		designations:    []string{"Founder", "CEO", "CFO", "Managing Director", "Partner", "Chairperson", "Angel Investor"},
		sectors:         []string{"fintech", "healthcare", "energy", "real-estate", "consumer", "manufacturing", "media"},
		rmRoles:         []string{"senior", "associate", "principal"},
		companyStems:    []string{"Arka", "Nimbus", "Vista", "Sagar", "Trident", "Kaveri", "Orion", "Lotus", "Zenith"},
		companySuffixes: []string{"Technologies", "Pharma", "Infra", "Capital", "Foods", "Media", "Energy"},
		eventKinds:      []string{"IPO", "Acquisition", "Secondary Sale", "Special Dividend", "ESOP Buyback"},
		networkNames:    []string{"Bombay", "Willingdon", "Harbour", "Deccan", "IIM Alumni", "Young Presidents"},
		networkCategories: []string{
			"Golf Club", "Business Council", "Alumni Circle", "Philanthropy Forum",
		},
		edgeLabels: map[domain.EdgeType]string{
			domain.EdgeManages:    "manages",
			domain.EdgePromoterOf: "promoter",
			domain.EdgeDirectorOf: "director",
			domain.EdgeInvestorIn: "investor",
			domain.EdgeMemberOf:   "member",
			domain.EdgeKnows:      "knows",
			domain.EdgeAffects:    "affects",
			domain.EdgeInvolves:   "involves",
		},
	}
}
