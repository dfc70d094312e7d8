package patch

// LVGL animation flags used as the trailing argument of value setters.
const (
	AnimOff = "LV_ANIM_OFF"
	AnimOn  = "LV_ANIM_ON"
)

// LVGL93Rules adapts EEZ Studio output to LVGL 9.3. The order is fixed and determines
// the order of per-rule counts in a Result.
func LVGL93Rules() []Rule {
	return []Rule{
		NewRemoveParamRule("lv_dropdown_set_selected", AnimOff, AnimOn),
		NewAddParamRule("lv_bar_set_value", AnimOff, AnimOn),
		NewAddParamRule("lv_slider_set_value", AnimOff, AnimOn),
		NewAddParamRule("lv_roller_set_selected", AnimOff, AnimOn),
		NewAddParamRule("lv_tabview_set_active", AnimOff, AnimOn),
	}
}
