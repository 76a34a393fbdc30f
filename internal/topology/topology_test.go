package topology_test

import (
	"net"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/MrT-Stephens/STP-Network-Simulation/internal/stp"
	"github.com/MrT-Stephens/STP-Network-Simulation/internal/topology"
)

var _ = Describe("YAML topology", func() {
	It("should parse nodes, defaults and links", func() {
		spec, err := topology.ParseYAML([]byte(`
topology:
  name: pair
nodes:
  - name: X
    mac: "00:00:00:00:00:01"
    priority: 0
  - name: Y
links:
  - from_node: X
    from_port: 1
    to_node: Y
    to_port: 3
    speed: 1000
`))
		Expect(err).NotTo(HaveOccurred())
		Expect(spec.Name).To(Equal("pair"))
		Expect(spec.Nodes).To(HaveLen(2))

		x := spec.Nodes[0]
		Expect(x.Priority).To(Equal(uint16(0)))
		Expect(x.MAC).To(Equal(net.HardwareAddr{0, 0, 0, 0, 0, 1}))
		id, err := x.ID()
		Expect(err).NotTo(HaveOccurred())
		Expect(id).To(Equal(stp.BridgeID(1)))

		y := spec.Nodes[1]
		Expect(y.Priority).To(Equal(stp.DefaultPriority))
		Expect(y.MAC).To(BeNil())
		id, err = y.ID()
		Expect(err).NotTo(HaveOccurred())
		Expect(id).To(Equal(stp.BridgeID(0x8000ffffffffffff)))

		Expect(spec.Links).To(ConsistOf(topology.Link{
			A:     topology.Endpoint{Node: "X", Port: 1},
			B:     topology.Endpoint{Node: "Y", Port: 3},
			Speed: 1000,
		}))
	})

	It("should reject unknown fields", func() {
		_, err := topology.ParseYAML([]byte("nodes:\n  - name: A\n    colour: red\n"))
		Expect(err).To(MatchError(topology.ErrInvalidTopology))
	})

	It("should reject a topology without nodes", func() {
		_, err := topology.ParseYAML([]byte("topology:\n  name: empty\n"))
		Expect(err).To(MatchError(topology.ErrInvalidTopology))
	})

	It("should reject bad MACs and priorities", func() {
		_, err := topology.ParseYAML([]byte("nodes:\n  - name: A\n    mac: zz\n"))
		Expect(err).To(MatchError(topology.ErrInvalidTopology))

		_, err = topology.ParseYAML([]byte("nodes:\n  - name: A\n    priority: 70000\n"))
		Expect(err).To(MatchError(topology.ErrInvalidTopology))
	})

	It("should reject ports out of range", func() {
		_, err := topology.ParseYAML([]byte(`
nodes: [{name: A}, {name: B}]
links:
  - {from_node: A, from_port: 65536, to_node: B, to_port: 1, speed: 10}
`))
		Expect(err).To(MatchError(stp.ErrMalformedLinkEndpoint))
	})
})

var _ = Describe("DOT topology", func() {
	It("should parse the bridged LAN subset", func() {
		spec, err := topology.ParseDOT([]byte(`
# generated
strict graph lan {
    rankdir=LR
    node [shape=box]
    /* bridges */
    A [mac="00:00:00:00:00:01", priority=4096];
    B [mac="00-00-00-00-00-02"]
    C
    "A:1" -- "B:1" [speed=1000];
    A:2 -- C:1 -- B:2 [speed=100]
}
`))
		Expect(err).NotTo(HaveOccurred())
		Expect(spec.Name).To(Equal("lan"))
		Expect(spec.Nodes).To(HaveLen(3))
		Expect(spec.Nodes[0].Priority).To(Equal(uint16(4096)))
		Expect(spec.Nodes[1].MAC).To(Equal(net.HardwareAddr{0, 0, 0, 0, 0, 2}))
		Expect(spec.Nodes[2].Priority).To(Equal(stp.DefaultPriority))

		Expect(spec.Links).To(Equal([]topology.Link{
			{A: topology.Endpoint{Node: "A", Port: 1}, B: topology.Endpoint{Node: "B", Port: 1}, Speed: 1000},
			{A: topology.Endpoint{Node: "A", Port: 2}, B: topology.Endpoint{Node: "C", Port: 1}, Speed: 100},
			{A: topology.Endpoint{Node: "C", Port: 1}, B: topology.Endpoint{Node: "B", Port: 2}, Speed: 100},
		}))
	})

	It("should merge repeated node statements", func() {
		spec, err := topology.ParseDOT([]byte(`graph { A [priority=1]; A [mac="00:00:00:00:00:09"] }`))
		Expect(err).NotTo(HaveOccurred())
		Expect(spec.Nodes).To(HaveLen(1))
		Expect(spec.Nodes[0].Priority).To(Equal(uint16(1)))
		Expect(spec.Nodes[0].MAC).To(Equal(net.HardwareAddr{0, 0, 0, 0, 0, 9}))
	})

	It("should require a port on every edge endpoint", func() {
		_, err := topology.ParseDOT([]byte(`graph { A; B; A -- B [speed=10] }`))
		Expect(err).To(MatchError(stp.ErrMalformedLinkEndpoint))
	})

	It("should create nodes first seen on an edge", func() {
		spec, err := topology.ParseDOT([]byte(`digraph { "X:1" -> "Y:2" [speed=10] }`))
		Expect(err).NotTo(HaveOccurred())
		Expect(spec.Nodes).To(HaveLen(2))
		Expect(spec.Nodes[0].Label).To(Equal("X"))
		Expect(spec.Nodes[1].Priority).To(Equal(stp.DefaultPriority))
		Expect(spec.Links).To(Equal([]topology.Link{
			{A: topology.Endpoint{Node: "X", Port: 1}, B: topology.Endpoint{Node: "Y", Port: 2}, Speed: 10},
		}))
	})

	It("should reject subgraphs and non-numeric attributes", func() {
		_, err := topology.ParseDOT([]byte(`graph { subgraph s { A } }`))
		Expect(err).To(MatchError(topology.ErrInvalidTopology))

		_, err = topology.ParseDOT([]byte(`graph { A [priority=high] }`))
		Expect(err).To(MatchError(topology.ErrInvalidTopology))

		_, err = topology.ParseDOT([]byte(`graph { "A:x" -- "B:1" [speed=10] }`))
		Expect(err).To(MatchError(stp.ErrMalformedLinkEndpoint))
	})

	It("should report syntax errors", func() {
		_, err := topology.ParseDOT([]byte(`graph { A [mac= }`))
		Expect(err).To(MatchError(topology.ErrInvalidTopology))

		_, err = topology.ParseDOT([]byte(`network { }`))
		Expect(err).To(MatchError(topology.ErrInvalidTopology))

		_, err = topology.ParseDOT([]byte(`graph { A `))
		Expect(err).To(MatchError(topology.ErrInvalidTopology))
	})
})

var _ = Describe("Build", func() {
	It("should build every node, isolated ones included", func() {
		spec := &topology.Spec{
			Nodes: []topology.Node{
				{Label: "A", MAC: net.HardwareAddr{0, 0, 0, 0, 0, 1}, Priority: 1},
				{Label: "B", MAC: net.HardwareAddr{0, 0, 0, 0, 0, 2}, Priority: 1},
				{Label: "lonely", MAC: net.HardwareAddr{0, 0, 0, 0, 0, 3}, Priority: 1},
			},
			Links: []topology.Link{
				{A: topology.Endpoint{Node: "A", Port: 1}, B: topology.Endpoint{Node: "B", Port: 1}, Speed: 10},
			},
		}
		nw, err := topology.Build(spec)
		Expect(err).NotTo(HaveOccurred())
		Expect(nw.Len()).To(Equal(3))
		Expect(nw.Links()).To(HaveLen(1))
		Expect(nw.Links()[0].Cost).To(Equal(uint32(100)))

		lonely, ok := nw.BridgeByLabel("lonely")
		Expect(ok).To(BeTrue())
		Expect(lonely.Ports()).To(BeEmpty())
	})

	It("should produce no network for an unsupported speed", func() {
		spec := &topology.Spec{
			Nodes: []topology.Node{{Label: "A", Priority: 1}, {Label: "B", Priority: 2}},
			Links: []topology.Link{
				{A: topology.Endpoint{Node: "A", Port: 1}, B: topology.Endpoint{Node: "B", Port: 1}, Speed: 7},
			},
		}
		nw, err := topology.Build(spec)
		Expect(err).To(MatchError(stp.ErrInvalidLinkSpeed))
		Expect(nw).To(BeNil())
	})

	It("should reject links to unknown nodes", func() {
		spec := &topology.Spec{
			Nodes: []topology.Node{{Label: "A", Priority: 1}},
			Links: []topology.Link{
				{A: topology.Endpoint{Node: "A", Port: 1}, B: topology.Endpoint{Node: "Z", Port: 1}, Speed: 10},
			},
		}
		nw, err := topology.Build(spec)
		Expect(err).To(MatchError(stp.ErrMalformedLinkEndpoint))
		Expect(nw).To(BeNil())
	})

	It("should reject duplicate names and reused ports", func() {
		_, err := topology.Build(&topology.Spec{Nodes: []topology.Node{{Label: "A"}, {Label: "A"}}})
		Expect(err).To(MatchError(topology.ErrInvalidTopology))

		_, err = topology.Build(&topology.Spec{
			Nodes: []topology.Node{{Label: "A", Priority: 1}, {Label: "B", Priority: 2}},
			Links: []topology.Link{
				{A: topology.Endpoint{Node: "A", Port: 1}, B: topology.Endpoint{Node: "B", Port: 1}, Speed: 10},
				{A: topology.Endpoint{Node: "A", Port: 1}, B: topology.Endpoint{Node: "B", Port: 2}, Speed: 10},
			},
		})
		Expect(err).To(MatchError(stp.ErrMalformedLinkEndpoint))
	})

	It("should fold nodes sharing a bridge id into one bridge", func() {
		nw, err := topology.Build(&topology.Spec{
			Nodes: []topology.Node{{Label: "first"}, {Label: "second"}},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(nw.Len()).To(Equal(1))
	})
})

var _ = Describe("Load", func() {
	It("should load and converge the sample YAML topology", func() {
		spec, nw, err := topology.Load("../../topologies/triangle.yaml")
		Expect(err).NotTo(HaveOccurred())
		Expect(spec.Name).To(Equal("Triangle"))

		d := stp.NewDriver(nw)
		d.Boot()
		Expect(d.Converge(10).Converged).To(BeTrue())

		roots := nw.Snapshot().Roots()
		Expect(roots).To(HaveLen(1))
		Expect(roots[0].Label).To(Equal("A"))
	})

	It("should load the sample DOT topology", func() {
		spec, nw, err := topology.Load("../../topologies/campus.dot")
		Expect(err).NotTo(HaveOccurred())
		Expect(spec.Name).To(Equal("campus"))
		Expect(nw.Len()).To(Equal(5))
		Expect(nw.Links()).To(HaveLen(7))
	})

	It("should refuse unknown extensions", func() {
		_, _, err := topology.Load("topology.txt")
		Expect(err).To(MatchError(topology.ErrInvalidTopology))
	})
})
