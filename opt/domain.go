package opt

import "fmt"

// Domain is the ownership domain of a resource: whether its capacity lives
// on nodes or on links. Every application referencing a resource name must
// agree on its domain; elementCapacities is the single point that dispatches
// on it.
type Domain uint8

const (
	// DomainUnknown is the zero value and never valid in input.
	DomainUnknown Domain = iota
	// DomainNode scopes a resource's capacity to topology nodes.
	DomainNode
	// DomainLink scopes a resource's capacity to topology links.
	DomainLink
)

// Valid reports whether d is one of the recognized domains.
func (d Domain) Valid() bool {
	return d == DomainNode || d == DomainLink
}

// String renders the domain for errors and logs.
func (d Domain) String() string {
	switch d {
	case DomainNode:
		return "node"
	case DomainLink:
		return "link"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(d))
	}
}

// ParseDomain converts the YAML/CLI spelling of a domain. Unrecognized
// spellings are configuration errors.
func ParseDomain(s string) (Domain, error) {
	switch s {
	case "node":
		return DomainNode, nil
	case "link":
		return DomainLink, nil
	default:
		return DomainUnknown, fmt.Errorf("%w: unknown ownership domain %q; valid: node, link", ErrConfig, s)
	}
}
