package farmdata

import "strings"

// Canonical names of the fields price preparation depends on.
const (
	FieldBatchID     = "BatchID"
	FieldCropType    = "CropType"
	FieldHarvestDate = "HarvestDate"
	FieldModalPrice  = "ModalPrice"
)

// fieldNames maps the column names found in farm exports to canonical
// field names. It is never written after package initialisation.
var fieldNames = map[string]string{
	// Core fields and the spellings they arrive under.
	"BatchID":      FieldBatchID,
	"batchid":      FieldBatchID,
	"batch_id":     FieldBatchID,
	"Batch ID":     FieldBatchID,
	"CropType":     FieldCropType,
	"croptype":     FieldCropType,
	"crop_type":    FieldCropType,
	"Crop Type":    FieldCropType,
	"HarvestDate":  FieldHarvestDate,
	"harvestdate":  FieldHarvestDate,
	"harvest_date": FieldHarvestDate,
	"Harvest Date": FieldHarvestDate,
	"ModalPrice":   FieldModalPrice,
	"modalprice":   FieldModalPrice,
	"modal_price":  FieldModalPrice,
	"Modal Price":  FieldModalPrice,

	// Farm operations
	"FarmLocation":      "FarmLocation",
	"Fertilizerkgperha": "Fertilizer_kg_per_ha",
	"SoilMoisture%":     "SoilMoisture_%",
	"TemperatureC":      "Temperature_C",
	"Rainfallmm":        "Rainfall_mm",
	"Yieldtonnesperha":  "Yield_tonnes_per_ha",
	"PestRiskScore":     "PestRiskScore",

	// Harvest and storage
	"HarvestRobotUptime%":    "HarvestRobotUptime_%",
	"StorageTemperatureC":    "StorageTemperature_C",
	"Humidity%":              "Humidity_%",
	"SpoilageRate%":          "SpoilageRate_%",
	"GradingScore":           "GradingScore",
	"PredictedShelfLifedays": "PredictedShelfLife_days",
	"StorageDays":            "StorageDays",

	// Processing and packaging
	"ProcessType":               "ProcessType",
	"PackagingType":             "PackagingType",
	"PackagingSpeedunitspermin": "PackagingSpeed_units_per_min",
	"DefectRate%":               "DefectRate_%",
	"MachineryUptime%":          "MachineryUptime_%",

	// Transport
	"TransportMode":       "TransportMode",
	"TransportDistancekm": "TransportDistance_km",
	"FuelUsageLper100km":  "FuelUsage_L_per_100km",
	"DeliveryTimehr":      "DeliveryTime_hr",
	"DeliveryDelayFlag":   "DeliveryDelayFlag",
	"SpoilageInTransit%":  "SpoilageInTransit_%",

	// Retail and consumption
	"RetailInventoryunits":          "RetailInventory_units",
	"SalesVelocityunitsperday":      "SalesVelocity_units_per_day",
	"DynamicPricingIndex":           "DynamicPricingIndex",
	"WastePercentage%":              "WastePercentage_%",
	"HouseholdWastekg":              "HouseholdWaste_kg",
	"RecipeRecommendationAccuracy%": "RecipeRecommendationAccuracy_%",
	"SatisfactionScore010":          "SatisfactionScore_0_10",

	// Waste handling
	"WasteType":            "WasteType",
	"SegregationAccuracy%": "SegregationAccuracy_%",
	"UpcyclingRate%":       "UpcyclingRate_%",
	"BiogasOutputm3":       "BiogasOutput_m3",

	// Market
	"minprice":   "minprice",
	"maxprice":   "maxprice",
	"marketname": "marketname",
	"latitude":   "latitude",
	"longitude":  "longitude",
}

// foldedFieldNames indexes fieldNames by lower-cased key.
var foldedFieldNames = foldKeys(fieldNames)

func foldKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}

// CanonicalName returns the canonical field name for a column header.
// Exact matches win over case-insensitive ones; unknown names are returned
// unchanged.
func CanonicalName(name string) string {
	if canonical, ok := fieldNames[name]; ok {
		return canonical
	}
	if canonical, ok := foldedFieldNames[strings.ToLower(name)]; ok {
		return canonical
	}
	return name
}
