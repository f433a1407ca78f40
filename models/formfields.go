package models

// FormFieldPaths maps the stable form-field ids used by the appraisal UI to
// their document paths. The ids are part of the UI contract and must not be
// renamed without coordinating with the frontend.
var FormFieldPaths = map[string]string{
	"plate":              PathPlate,
	"location":           "meta.location",
	"officeCode":         "meta.office_code",
	"manufacturer":       "vehicle.manufacturer",
	"model":              "vehicle.model",
	"modelType":          "vehicle.model_type",
	"trim":               "vehicle.trim",
	"year":               "vehicle.year",
	"chassis":            "vehicle.chassis",
	"engineVolume":       "vehicle.engine_volume",
	"fuelType":           "vehicle.fuel_type",
	"driveType":          "vehicle.drive_type",
	"transmission":       "vehicle.transmission",
	"modelCode":          "vehicle.model_code",
	"ownerName":          "stakeholders.owner.name",
	"ownerAddress":       "stakeholders.owner.address",
	"ownerPhone":         "stakeholders.owner.phone",
	"garageName":         "stakeholders.garage.name",
	"garagePhone":        "stakeholders.garage.phone",
	"garageEmail":        "stakeholders.garage.email",
	"insuranceCompany":   "stakeholders.insurance.company",
	"policyNumber":       "stakeholders.insurance.policy_number",
	"agentName":          "stakeholders.insurance.agent.name",
	"agentPhone":         "stakeholders.insurance.agent.phone",
	"agentEmail":         "stakeholders.insurance.agent.email",
	"damageDate":         PathDamageDate,
	"inspectionLocation": "case_info.inspection_location",
}
