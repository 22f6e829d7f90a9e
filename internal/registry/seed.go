package registry

import "time"

// DefaultParameters returns the built-in parameter catalog: the collectable
// data types and their legal units. Emission factors are kgCO2e per default
// unit, per the provincial reporting guideline.
func DefaultParameters() []*Parameter {
	return []*Parameter{
		{
			Category:          "energy",
			Name:              "电力消耗",
			DataType:          "electricity",
			Units:             []string{"kWh", "MWh"},
			DefaultUnit:       "kWh",
			UploadRequirement: UploadRealtime,
			EmissionFactor:    0.5810,
		},
		{
			Category:          "energy",
			Name:              "天然气",
			DataType:          "natural_gas",
			Units:             []string{"m³", "ft³"},
			DefaultUnit:       "m³",
			UploadRequirement: UploadReport,
			EmissionFactor:    2.162,
		},
		{
			Category:          "energy",
			Name:              "液化石油气",
			DataType:          "lpg",
			Units:             []string{"kg", "t"},
			DefaultUnit:       "kg",
			UploadRequirement: UploadReport,
			EmissionFactor:    3.101,
		},
		{
			Category:          "consumables",
			Name:              "药剂用量",
			DataType:          "chemical",
			Units:             []string{"kg", "L"},
			DefaultUnit:       "kg",
			UploadRequirement: UploadReport,
		},
		{
			Category:          "energy",
			Name:              "柴油",
			DataType:          "diesel",
			Units:             []string{"L", "gal"},
			DefaultUnit:       "L",
			UploadRequirement: UploadReport,
			EmissionFactor:    2.730,
		},
	}
}

// SeedBuildings returns development fixtures for the building registry.
func SeedBuildings(now time.Time) []*Building {
	mk := func(id, code, name, typ, org string, area, lat, lon float64) *Building {
		return &Building{
			ID:           id,
			Code:         code,
			Name:         name,
			Type:         typ,
			AreaM2:       area,
			Organization: org,
			Lat:          lat,
			Lon:          lon,
			Status:       BuildingActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}

	return []*Building{
		mk("bld_fjxz01", "FJ-XZ-01", "福建省行政中心主楼", "office", "福建省机关事务管理局", 58200, 26.0894, 119.2965),
		mk("bld_fjhb02", "FJ-HB-02", "环保大厦", "office", "福建省生态环境厅", 31500, 26.0762, 119.3061),
		mk("bld_fzfw03", "FZ-FW-03", "福州市民服务中心", "public_service", "福州市人民政府", 42800, 26.0453, 119.3312),
		mk("bld_fzhz04", "FZ-HZ-04", "海峡国际会展中心", "exhibition", "福州市人民政府", 116000, 26.0285, 119.3420),
		mk("bld_fjsd05", "FJ-SD-05", "福建师范大学旗山校区图书馆", "education", "福建师范大学", 39600, 26.0301, 119.1956),
	}
}
