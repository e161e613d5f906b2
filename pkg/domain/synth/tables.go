package synth

// Tables holds the reference lists the synthesizer picks from. A zero-length
// table disables synthesis for the entities that need it.
type Tables struct {
	Titles     []string
	Locations  []string
	Shifts     []string
	PayBands   []string
	Names      []string
	Statuses   []string
	Roles      []string
	CityAlias  map[string]string
	ShiftAlias map[string]string
}

// DefaultTables returns the built-in reference tables.
func DefaultTables() Tables {
	return Tables{
		Titles:     append([]string(nil), jobTitles...),
		Locations:  append([]string(nil), locations...),
		Shifts:     append([]string(nil), shifts...),
		PayBands:   append([]string(nil), payBands...),
		Names:      append([]string(nil), candidateNames...),
		Statuses:   append([]string(nil), candidateStatuses...),
		Roles:      append([]string(nil), candidateRoles...),
		CityAlias:  copyMap(cityAlias),
		ShiftAlias: copyMap(shiftAlias),
	}
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

var jobTitles = []string{
	"Retail Sales Associate", "Warehouse Associate", "Picker/Packer", "Customer Service Representative",
	"Call Center Representative", "Barista", "Cashier", "Food Service Worker", "Line Cook", "Prep Cook",
	"Dishwasher", "Server", "Host/Hostess", "Delivery Driver", "Rideshare Driver", "Security Guard",
	"Janitorial Associate", "Housekeeper", "Room Attendant", "Hotel Front Desk Agent", "Greeter",
	"Stock Associate", "Inventory Control Associate", "Merchandising Associate", "Grocery Clerk",
	"Deli Clerk", "Bakery Associate", "Produce Clerk", "Pharmacy Technician Trainee", "Mailroom Clerk",
	"Receptionist", "Data Entry Clerk", "Administrative Assistant", "Front Office Coordinator",
	"Facilities Helper", "Maintenance Helper", "Groundskeeper", "Valet Attendant", "Parking Attendant",
	"Event Staff", "Concessions Worker", "Stadium Usher", "Warehouse Loader", "Forklift Operator",
	"Production Operator", "Light Assembler", "Quality Inspector", "Packaging Associate",
	"Kitting Associate", "Shipping Clerk", "Receiving Clerk", "Cycle Counter", "Order Picker",
	"Sorter/Scanner", "Laundry Attendant", "Caregiver", "Home Health Aide", "Phlebotomist",
	"Warehouse Supervisor (Entry)", "Shift Lead", "Team Lead (Front End)",
}

var locations = []string{
	"New York", "Los Angeles", "Chicago", "Dallas", "Atlanta", "Miami", "Houston", "Phoenix", "Boston", "Seattle",
	"San Francisco", "San Diego", "Austin", "Denver", "Orlando", "Washington DC", "Philadelphia", "Charlotte", "Tampa", "Nashville",
	"San Antonio", "Columbus", "Indianapolis", "Fort Worth", "Memphis", "Baltimore", "El Paso", "Portland", "Las Vegas", "Detroit",
	"Oklahoma City", "Louisville", "Milwaukee", "Albuquerque", "Tucson", "Fresno", "Sacramento", "Kansas City", "Mesa", "Omaha",
	"Colorado Springs", "Raleigh", "Long Beach", "Virginia Beach", "Oakland", "Minneapolis", "Tulsa", "Arlington", "Newark", "Buffalo",
}

var shifts = []string{"Morning", "Afternoon", "Evening"}

var payBands = []string{"$15-17/hr", "$17-19/hr", "$19-22/hr", "$22-25/hr", "$25-30/hr"}

var candidateNames = []string{
	"Ahmed Al-Mutairi", "Fatima Al-Harbi", "Yousef Al-Qahtani", "Mona Al-Otaibi", "Omar Al-Shammari",
	"Layla Al-Rashid", "Hassan Al-Zahrani", "Sara Al-Ghamdi", "Khalid Al-Anazi", "Noura Al-Saud",
	"Aisha Rahman", "Omar Haddad", "Layla Nasser", "Yusuf Qureshi", "Zainab Fadel",
	"Tariq Nasser", "Rana Karim", "Ali Hassan", "Amal Samir", "Rami Jaber",
	"Huda Taleb", "Sami Barakat", "Nadia Azmi", "Faisal Haddad", "Mariam Kamel",
	"Khaled Farouk", "Omar Shammari", "Reem Saleh", "Basem Khoury", "Dalia Mansour",
	"Juan Pérez", "María García", "Luis Hernández", "Lucía Martínez", "Carlos Sánchez",
	"Sofía López", "Diego Gómez", "Camila Díaz", "Miguel Torres", "Elena Ruiz",
	"Ricardo Morales", "Isabella Castillo", "Andrés Navarro", "Valentina Rojas", "Pedro Romero",
	"Paula Vega", "Javier Ortega", "Hugo Cabrera", "Carmen Soto", "Gabriela Morales",
	"Fernando Álvarez", "Lucía Herrera", "Marcos Medina", "Daniela Pineda", "Santiago Rivera",
	"Ximena Castillo", "José Luis Morales", "Adriana Delgado", "Pablo Castillo", "Rosa Álvarez",
	"Manuel Ortiz", "Teresa Molina", "Eduardo Santos", "Alejandra Cruz", "Roberto Navarro",
	"Carolina Mendoza", "Vicente Campos", "Miguel Santos", "Mateo López", "Alejandra Ruiz",
	"John Miller", "Emily Johnson", "Michael Smith", "Olivia Brown", "David Wilson",
	"Ava Davis", "Daniel Anderson", "Sophia Thomas", "James Taylor", "Emma Moore",
	"William Clark", "Charlotte Martin", "Benjamin Lee", "Amelia Walker", "Henry Hall",
	"Mia Allen", "Alexander Young", "Harper King", "Ethan Wright", "Abigail Scott",
	"Noah Green", "Ella Baker", "Lucas Nelson", "Grace Adams", "Jacob Hill",
	"Lily Campbell", "Logan Mitchell", "Chloe Turner", "Mason Parker", "Aria Rogers",
}

var candidateStatuses = []string{"contacted", "replied", "qualified", "scheduled"}

var candidateRoles = []string{
	"Retail Sales Associate", "Warehouse Associate", "Customer Service Representative",
	"Delivery Driver", "Line Cook", "Forklift Operator", "Receptionist", "Caregiver",
}

// Backend regions are remapped to display cities.
var cityAlias = map[string]string{
	"Riyadh":     "Dallas",
	"Jeddah":     "San Diego",
	"Dammam":     "Houston",
	"Dubai":      "Miami",
	"Doha":       "Austin",
	"Cairo":      "Chicago",
	"Casablanca": "Boston",
}

var shiftAlias = map[string]string{
	"Night": "Evening",
}
