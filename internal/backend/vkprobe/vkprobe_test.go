package vkprobe

import (
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestVersionDecode(t *testing.T) {
	v := Version(vk.MakeVersion(1, 3, 250))
	if v.Major() != 1 || v.Minor() != 3 || v.Patch() != 250 {
		t.Fatalf("decoded %d.%d.%d", v.Major(), v.Minor(), v.Patch())
	}
	if v.String() != "1.3.250" {
		t.Errorf("String = %q", v.String())
	}
}

func TestRankOrder(t *testing.T) {
	order := []DeviceType{TypeDiscrete, TypeIntegrated, TypeVirtual, TypeCPU, TypeOther}
	for i := 1; i < len(order); i++ {
		if order[i-1].Rank() <= order[i].Rank() {
			t.Errorf("%v should outrank %v", order[i-1], order[i])
		}
	}
}

func TestFromVk(t *testing.T) {
	tests := map[vk.PhysicalDeviceType]DeviceType{
		vk.PhysicalDeviceTypeDiscreteGpu:   TypeDiscrete,
		vk.PhysicalDeviceTypeIntegratedGpu: TypeIntegrated,
		vk.PhysicalDeviceTypeVirtualGpu:    TypeVirtual,
		vk.PhysicalDeviceTypeCpu:           TypeCPU,
		vk.PhysicalDeviceTypeOther:         TypeOther,
	}
	for in, want := range tests {
		if got := fromVk(in); got != want {
			t.Errorf("fromVk(%d) = %v, want %v", in, got, want)
		}
	}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name     string
		adapters []Adapter
		want     int
		ok       bool
	}{
		{"empty", nil, 0, false},
		{"discrete wins", []Adapter{
			{Index: 0, Type: TypeIntegrated, GraphicsQueue: true},
			{Index: 1, Type: TypeDiscrete, GraphicsQueue: true},
			{Index: 2, Type: TypeCPU, GraphicsQueue: true},
		}, 1, true},
		{"needs graphics queue", []Adapter{
			{Index: 0, Type: TypeDiscrete},
			{Index: 1, Type: TypeVirtual, GraphicsQueue: true},
		}, 1, true},
		{"tie keeps enumeration order", []Adapter{
			{Index: 0, Type: TypeCPU, GraphicsQueue: true},
			{Index: 1, Type: TypeIntegrated, GraphicsQueue: true},
			{Index: 2, Type: TypeIntegrated, GraphicsQueue: true},
		}, 1, true},
		{"none usable", []Adapter{{Index: 0, Type: TypeDiscrete}}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Select(tt.adapters)
			if ok != tt.ok || (ok && got.Index != tt.want) {
				t.Fatalf("Select = %d, %v; want %d, %v", got.Index, ok, tt.want, tt.ok)
			}
		})
	}
}
