package service

import (
	"sort"

	"github.com/kbukum/cloudkit/classifier"
	"github.com/kbukum/cloudkit/errors"
)

// Definition describes one provider API.
type Definition struct {
	// Name tags logs, spans and errors, e.g. "rds".
	Name string
	// APIVersion is sent as the Version parameter.
	APIVersion string
	// DefaultRegion is used when Config.Region is empty.
	DefaultRegion string
	// Regions maps a region name to its endpoint host.
	Regions map[string]string
	// Errors maps provider codes to error kinds.
	Errors classifier.Table
	// Path is the request path. Defaults to "/".
	Path string
}

// Endpoint returns the host serving region. An empty region selects the
// default region.
func (d Definition) Endpoint(region string) (string, string, error) {
	if region == "" {
		region = d.DefaultRegion
	}
	host, ok := d.Regions[region]
	if !ok {
		return "", "", errors.Configuration("unknown %s region %q", d.Name, region).
			WithDetail("regions", d.RegionNames())
	}
	return region, host, nil
}

// RegionNames returns the known regions in sorted order.
func (d Definition) RegionNames() []string {
	names := make([]string, 0, len(d.Regions))
	for name := range d.Regions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d Definition) validate() error {
	if d.Name == "" {
		return errors.Configuration("service definition has no name")
	}
	if d.APIVersion == "" {
		return errors.Configuration("service %s has no API version", d.Name)
	}
	return nil
}
