package app

import "rental_sync/internal/domain"

// Post meta keys written by the pipeline. They mirror the WordPress template
// placeholders of the property page.
const (
	KeyDescription     = "sections_1_content"
	KeySlideTitle      = "header_slideshow_%d_title"
	KeyBedrooms        = "sections_3_boxes_list_0_box_sub_heading"
	KeyAmenities       = "sections_3_boxes_list_1_box_sub_heading"
	KeyKitchen         = "sections_3_boxes_list_2_box_sub_heading"
	KeyLivingDining    = "sections_3_boxes_list_3_box_sub_heading"
	KeyOutdoor         = "sections_3_boxes_list_4_box_sub_heading"
	KeyMiscellaneous   = "sections_3_boxes_list_5_box_sub_heading"
	KeyDetails         = "sections_5_features_list_0_feature_sub_heading"
	KeyBookingScript   = "sections_5_features_list_0_feature_description"
	KeyMapScript       = "sections_4_menu_group_0_menu_item_0_menu_item_heading"
	KeySlideImage      = "header_slideshow_%d_image"
	KeyGalleryImage    = "sections_2_gallery_images_%d_gallery_image"
	slideSlots         = 2
	defaultImageSuffix = "medium"
)

// Settings is the explicit configuration handed to the pipeline at construction.
type Settings struct {
	Catalog             domain.Catalog
	ImagesBaseURL       string
	ImageFallbackSuffix string
	GoogleMapsKey       string
	BookingWidgetURL    string
	BookingSiteID       string
	BookingTheme        string
}
