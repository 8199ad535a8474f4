package merkle

// Chain is an append-only, in-memory sequence of nodes where every node links
// to the one appended before it. The zero value is an empty chain.
type Chain struct {
	nodes []*Node
}

// NewChain creates an empty chain.
func NewChain() *Chain {
	return &Chain{}
}

// Append links content onto the current head and returns the new node.
func (c *Chain) Append(content any) *Node {
	node := NewNode(content, c.HeadNode())
	c.nodes = append(c.nodes, node)

	return node
}

// HeadNode returns the most recently appended node, or nil for an empty chain.
func (c *Chain) HeadNode() *Node {
	if len(c.nodes) == 0 {
		return nil
	}
	return c.nodes[len(c.nodes)-1]
}

// Head returns the hash of the head node, or "" for an empty chain.
func (c *Chain) Head() string {
	if head := c.HeadNode(); head != nil {
		return head.Hash
	}
	return ""
}

// Len returns the number of nodes in the chain.
func (c *Chain) Len() int {
	return len(c.nodes)
}

// Nodes returns the nodes from root to head. The returned slice is a copy.
func (c *Chain) Nodes() []*Node {
	out := make([]*Node, len(c.nodes))
	copy(out, c.nodes)
	return out
}

// Reset drops every node.
func (c *Chain) Reset() {
	c.nodes = nil
}
