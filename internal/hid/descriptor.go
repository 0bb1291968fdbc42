package hid

// ReportMap is the HID report descriptor published by the keypad. It
// declares one keyboard, one consumer control and one relative mouse
// collection, matching KeyboardReport, ConsumerReport and MouseReport.
var ReportMap = []byte{
	0x05, 0x01, // Usage Page (Generic Desktop Ctrls)
	0x09, 0x06, // Usage (Keyboard)
	0xa1, 0x01, // Collection (Application)
	0x85, ReportIDKeyboard, // Report ID (1)
	0x05, 0x07, // Usage Page (Kbrd/Keypad)
	0x19, 0xe0, // Usage Minimum (0xE0)
	0x29, 0xe7, // Usage Maximum (0xE7)
	0x15, 0x00, // Logical Minimum (0)
	0x25, 0x01, // Logical Maximum (1)
	0x75, 0x01, // Report Size (1)
	0x95, 0x08, // Report Count (8)
	0x81, 0x02, // Input (Data,Var,Abs)
	0x95, 0x01, // Report Count (1)
	0x75, 0x08, // Report Size (8)
	0x81, 0x01, // Input (Const) reserved byte
	0x95, 0x06, // Report Count (6)
	0x75, 0x08, // Report Size (8)
	0x15, 0x00, // Logical Minimum (0)
	0x25, 0xff, // Logical Maximum (255)
	0x05, 0x07, // Usage Page (Kbrd/Keypad)
	0x19, 0x00, // Usage Minimum (0x00)
	0x29, 0xff, // Usage Maximum (0xFF)
	0x81, 0x00, // Input (Data,Array,Abs)
	0xc0, // End Collection

	0x05, 0x0c, // Usage Page (Consumer)
	0x09, 0x01, // Usage (Consumer Control)
	0xa1, 0x01, // Collection (Application)
	0x85, ReportIDConsumer, // Report ID (2)
	0x95, 0x01, // Report Count (1)
	0x75, 0x10, // Report Size (16)
	0x15, 0x01, // Logical Minimum (1)
	0x26, 0x9c, 0x02, // Logical Maximum (668)
	0x19, 0x01, // Usage Minimum (Consumer Control)
	0x2a, 0x9c, 0x02, // Usage Maximum (AC Distribute Vertically)
	0x81, 0x00, // Input (Data,Array,Abs)
	0xc0, // End Collection

	0x05, 0x01, // Usage Page (Generic Desktop Ctrls)
	0x09, 0x02, // Usage (Mouse)
	0xa1, 0x01, // Collection (Application)
	0x85, ReportIDMouse, // Report ID (3)
	0x09, 0x01, // Usage (Pointer)
	0xa1, 0x00, // Collection (Physical)
	0x05, 0x09, // Usage Page (Button)
	0x19, 0x01, // Usage Minimum (0x01)
	0x29, 0x03, // Usage Maximum (0x03)
	0x15, 0x00, // Logical Minimum (0)
	0x25, 0x01, // Logical Maximum (1)
	0x95, 0x03, // Report Count (3)
	0x75, 0x01, // Report Size (1)
	0x81, 0x02, // Input (Data,Var,Abs)
	0x95, 0x01, // Report Count (1)
	0x75, 0x05, // Report Size (5)
	0x81, 0x03, // Input (Const,Var,Abs) padding
	0x05, 0x01, // Usage Page (Generic Desktop Ctrls)
	0x09, 0x30, // Usage (X)
	0x09, 0x31, // Usage (Y)
	0x09, 0x38, // Usage (Wheel)
	0x15, 0x81, // Logical Minimum (-127)
	0x25, 0x7f, // Logical Maximum (127)
	0x75, 0x08, // Report Size (8)
	0x95, 0x03, // Report Count (3)
	0x81, 0x06, // Input (Data,Var,Rel)
	0xc0, // End Collection
	0xc0, // End Collection
}
