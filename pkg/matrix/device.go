package matrix

import "github.com/edp1096/toy-symspice/pkg/cas"

type DeviceMatrix interface {
	AddElement(i, j int, value cas.Ratio) // 1-based indexing
}
