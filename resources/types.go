package resources

import "strings"

// LocalityGlobal is the sentinel locality for resources whose inventory is
// not partitioned by region (for example S3 buckets).
const LocalityGlobal = "global"

// reservedTagPrefix marks provider-managed tag keys that must never be
// copied into a record or written back to a resource.
const reservedTagPrefix = "aws:"

// Kind identifies the resource type of a discovered record and selects the
// tagging operation native to it.
type Kind string

const (
	KindEC2Instance Kind = "ec2:instance"
	KindS3Bucket    Kind = "s3:bucket"
	KindElastiCache Kind = "elasticache:replicationgroup"

	// KindUnknown is assigned when a bulk listing returns an ARN whose
	// service/type segments do not map to a known kind. Unknown records are
	// tagged through the generic bulk tagging operation.
	KindUnknown Kind = "unknown"
)

// Record represents one discovered cloud resource.
type Record struct {
	ARN      string            // globally unique identity
	ShortID  string            // native identifier (instance id, bucket name, ...), may be empty
	Kind     Kind
	Tags     map[string]string // existing tags, reserved-prefix keys excluded
	Locality string            // region code or LocalityGlobal
}

// KindFromARN infers the resource kind from the service and resource-type
// segments of an ARN. ARNs that cannot be classified yield KindUnknown.
func KindFromARN(arn string) Kind {
	parts := strings.SplitN(arn, ":", 6)
	if len(parts) < 6 {
		return KindUnknown
	}
	service, resource := parts[2], parts[5]
	switch service {
	case "ec2":
		if strings.HasPrefix(resource, "instance/") {
			return KindEC2Instance
		}
	case "s3":
		// Bucket ARNs carry the bare bucket name in the resource segment.
		if !strings.Contains(resource, "/") {
			return KindS3Bucket
		}
	case "elasticache":
		if strings.HasPrefix(resource, "replicationgroup:") {
			return KindElastiCache
		}
	}
	return KindUnknown
}

// FilterReservedTags returns a copy of tags with every reserved-prefix key
// removed. The input map is never mutated.
func FilterReservedTags(tags map[string]string) map[string]string {
	filtered := make(map[string]string, len(tags))
	for k, v := range tags {
		if strings.HasPrefix(k, reservedTagPrefix) {
			continue
		}
		filtered[k] = v
	}
	return filtered
}
